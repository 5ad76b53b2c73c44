package cloudtranslate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
)

// CredentialsEnvVar names the service-account file used both for
// Application Default Credentials and for deriving the project id.
const CredentialsEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"

type credentialsFile struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
}

// ResolveProjectID returns explicit when set. Otherwise it reads project_id
// from the file named by GOOGLE_APPLICATION_CREDENTIALS; any failure is a
// configuration error.
func ResolveProjectID(explicit string) (string, error) {
	if id := strings.TrimSpace(explicit); id != "" {
		return id, nil
	}
	path := strings.TrimSpace(os.Getenv(CredentialsEnvVar))
	if path == "" {
		return "", apperrors.Config(
			"Environment variable "+CredentialsEnvVar+" must point to your credentials JSON file "+
				"(or pass --project). Follow setup instructions at https://cloud.google.com/translate/docs/setup", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.Config(fmt.Sprintf("Failed to read credentials file %s.", path), err)
	}
	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return "", apperrors.Config(fmt.Sprintf("Failed to parse credentials file %s.", path), err)
	}
	if strings.TrimSpace(creds.ProjectID) == "" {
		return "", apperrors.Config(fmt.Sprintf("Credentials file %s has no project_id.", path), nil)
	}
	return strings.TrimSpace(creds.ProjectID), nil
}
