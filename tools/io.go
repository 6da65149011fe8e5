package tools

import (
	"os"
	"path/filepath"
)

// CreateParentDirectoryIfDoesNotExist makes sure the directory that will hold filePath exists.
func CreateParentDirectoryIfDoesNotExist(filePath string) error {
	return CreateDirectoryIfDoesNotExist(filepath.Dir(filePath))
}

func CreateDirectoryIfDoesNotExist(directory string) error {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		err := os.MkdirAll(directory, 0777)
		if err != nil {
			return err
		}
	}
	return nil
}

func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && !info.IsDir()
}
