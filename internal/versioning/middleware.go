package versioning

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Version-related HTTP headers
const (
	AcceptVersionHeader     = "Accept-Version"
	CurrentVersionHeader    = "X-Current-Version"
	SupportedVersionsHeader = "X-Supported-Versions"
)

// Middleware stamps responses with the server's API version and rejects
// requests that pin an incompatible Accept-Version.
func Middleware(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(CurrentVersionHeader, CurrentVersion.String())
			w.Header().Set(SupportedVersionsHeader, MinimumSupportedVersion.String()+" - "+CurrentVersion.String())

			raw := r.Header.Get(AcceptVersionHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			requested, err := ParseVersion(raw)
			if err != nil {
				writeVersionError(w, http.StatusBadRequest, "invalid Accept-Version header: "+raw)
				return
			}

			compatibility := CheckCompatibility(requested)
			if !compatibility.Compatible {
				logger.WithFields(logrus.Fields{
					"requested": requested.String(),
					"current":   CurrentVersion.String(),
					"reason":    compatibility.Reason,
				}).Warn("Rejected incompatible API version")
				writeVersionError(w, http.StatusNotAcceptable, compatibility.Reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeVersionError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
