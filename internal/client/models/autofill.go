package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UploadedFile is a local document queued for an autofill batch.
type UploadedFile struct {
	Path      string
	Name      string
	SizeBytes int64
	Extension string
}

// DescribeFile stats path and builds an UploadedFile for it.
func DescribeFile(path string) (UploadedFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return UploadedFile{}, err
	}
	if fi.IsDir() {
		return UploadedFile{}, fmt.Errorf("%s is a directory", path)
	}
	return UploadedFile{
		Path:      path,
		Name:      fi.Name(),
		SizeBytes: fi.Size(),
		Extension: strings.ToLower(filepath.Ext(fi.Name())),
	}, nil
}

// Replacement is a detected placeholder paired with the user's value.
type Replacement struct {
	Type        string `json:"type"`
	Original    string `json:"original"`
	Placeholder string `json:"placeholder,omitempty"`
	NewValue    string `json:"new_value"`
	Confidence  string `json:"confidence,omitempty"`
}

// Label is what the editor shows next to the input.
func (r Replacement) Label() string {
	if r.Placeholder != "" {
		return r.Placeholder
	}
	return r.Original
}

// Filled reports whether the user supplied a non-blank value.
func (r Replacement) Filled() bool {
	return strings.TrimSpace(r.NewValue) != ""
}

// AnalysisResult is the /api/autofill/analyze payload.
type AnalysisResult struct {
	Success      bool          `json:"success"`
	Text         string        `json:"text"`
	Replacements []Replacement `json:"replacements"`
	FileType     string        `json:"file_type,omitempty"`
}

// Artifact is a binary document returned by the API.
type Artifact struct {
	Filename     string
	ContentType  string
	Data         []byte
	ChangesCount int
	HasChanges   bool
}
