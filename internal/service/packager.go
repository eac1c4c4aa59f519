package service

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"docparse/internal/domain"
)

// Packager zips a request's output namespace in memory.
type Packager struct {
	remove func(path string) error
}

// NewPackager creates a Packager.
func NewPackager() *Packager {
	return &Packager{remove: os.RemoveAll}
}

// Package archives dir and then deletes it. The archive is complete before
// anything is removed, and a failed removal does not withhold it.
func (p *Packager) Package(root, dir string) (*domain.Archive, error) {
	archive, err := p.Archive(root, dir)
	if err != nil {
		return nil, err
	}
	if err := p.remove(dir); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("packager.Package: cleanup failed")
	}
	return archive, nil
}

// Archive zips every regular file under dir with deflate. Entry names are
// relative to root, so they start with dir's own name.
func (p *Packager) Archive(root, dir string) (*domain.Archive, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	var entries []string

	// WalkDir visits entries in lexical order, so archives are deterministic.
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name = filepath.ToSlash(name)
		if err := addFile(zw, path, name, d); err != nil {
			return fmt.Errorf("adding %s: %w", name, err)
		}
		entries = append(entries, name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPackagingFailed, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing archive: %v", domain.ErrPackagingFailed, err)
	}

	return &domain.Archive{Data: buf.Bytes(), Entries: entries}, nil
}

func addFile(zw *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}
