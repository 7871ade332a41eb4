// Package github normalizes gist API payloads and retrieves gists from the
// GitHub REST API.
package github

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/snipminer"
)

// RawGist is a gist object as returned by the gist API.
type RawGist struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Owner       *RawOwner `json:"owner"`
	Files       RawFiles  `json:"files"`
	HTMLURL     string    `json:"html_url"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
	Public      bool      `json:"public"`
}

// RawOwner is the owner sub-object of a gist.
type RawOwner struct {
	Login string `json:"login"`
}

// RawFile is one entry of a gist's files mapping. Name is the mapping key.
type RawFile struct {
	Name     string `json:"-"`
	Language string `json:"language"`
	RawURL   string `json:"raw_url"`
	Size     int    `json:"size"`
}

// RawFiles is a gist's files mapping in the order the API returned it.
type RawFiles []RawFile

// UnmarshalJSON decodes a JSON object keyed by filename, keeping key order.
// File fields that fail to decode are left zero.
func (fs *RawFiles) UnmarshalJSON(data []byte) error {
	*fs = RawFiles{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("files: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("files: expected key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}

		f := RawFile{}
		_ = json.Unmarshal(value, &f)
		f.Name = name
		*fs = append(*fs, f)
	}

	_, err = dec.Token()
	return err
}

// Normalize converts a raw gist into a Gist. The author is the owner's
// login when present, otherwise username. Languages are lower-cased.
// Content is left empty.
func Normalize(raw RawGist, username string) snipminer.Gist {
	author := username
	if raw.Owner != nil && raw.Owner.Login != "" {
		author = raw.Owner.Login
	}

	files := make([]snipminer.GistFile, 0, len(raw.Files))
	for _, f := range raw.Files {
		files = append(files, snipminer.GistFile{
			Filename: f.Name,
			Language: strings.ToLower(f.Language),
			RawURL:   f.RawURL,
			Size:     f.Size,
		})
	}

	return snipminer.Gist{
		ID:          raw.ID,
		Description: raw.Description,
		Files:       files,
		Author:      author,
		HTMLURL:     raw.HTMLURL,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
		Public:      raw.Public,
	}
}
