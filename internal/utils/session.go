package utils

import (
	"encoding/json"
	"os"
	"path/filepath"

	"forgefit/internal/config"
	"forgefit/internal/models"
)

// The live session state is a plain JSON file under the config dir. JSON
// rather than TOML because the state carries integer-keyed maps.
func getSessionPath() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "current_session.json"), nil
}

func SaveSessionState(state *models.SessionRuntimeState) error {
	path, err := getSessionPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func LoadSessionState() (*models.SessionRuntimeState, error) {
	path, err := getSessionPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var state models.SessionRuntimeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

func ClearSessionState() error {
	path, err := getSessionPath()
	if err != nil {
		return err
	}
	return os.Remove(path)
}

func SessionExists() bool {
	path, err := getSessionPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return !os.IsNotExist(err)
}
