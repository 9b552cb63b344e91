/*
Copyright © 2026 the AODSubset authors.
This file is part of AODSubset.

AODSubset is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AODSubset is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AODSubset.  If not, see <http://www.gnu.org/licenses/>.
*/

package aodutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aodsubset/cloud"
	"github.com/spatialmodel/aodsubset/internal/hash"
)

// downloadDir is the directory where remote files are cached.
var downloadDir = filepath.Join(os.TempDir(), "aodsubset")

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is an http(s) URL or a blob storage
// location. If it is, it downloads the file, unless it has already been
// downloaded, and returns the path to the downloaded file.
// Any other path is returned unchanged.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		return cachedDownload(ctx, path, log, downloadHTTP)
	case cloud.IsBlob(path):
		return cachedDownload(ctx, path, log, downloadBlob)
	default:
		return path, nil
	}
}

// cachedDownload uses fetch to download the file at path into the
// download cache and returns the location of the cached file.
func cachedDownload(ctx context.Context, path string, log logrus.FieldLogger,
	fetch func(ctx context.Context, path string, w io.Writer) error) (string, error) {

	dir := filepath.Join(downloadDir, hash.Key(path))
	local := filepath.Join(dir, downloadName(path))
	if _, err := os.Stat(local); err == nil {
		log.WithField("file", path).Debugf("using cached download %s", local)
		return local, nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("aodutil: creating download directory: %w", err)
	}

	// Download to a temporary file first so that an interrupted
	// download is not mistaken for a cached file.
	w, err := ioutil.TempFile(dir, "download")
	if err != nil {
		return "", fmt.Errorf("aodutil: creating file for download: %w", err)
	}
	log.WithField("file", path).Info("downloading")
	if err = fetch(ctx, path, w); err != nil {
		w.Close()
		os.Remove(w.Name())
		return "", fmt.Errorf("aodutil: downloading %s: %w", path, err)
	}
	if err = w.Close(); err != nil {
		os.Remove(w.Name())
		return "", fmt.Errorf("aodutil: downloading %s: %w", path, err)
	}
	if err = os.Rename(w.Name(), local); err != nil {
		return "", fmt.Errorf("aodutil: downloading %s: %w", path, err)
	}
	return local, nil
}

// downloadName returns the file name that the file at the given URL
// should be saved as.
func downloadName(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "download"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "download"
	}
	return name
}

// downloadBlob downloads the blob at path into w.
func downloadBlob(ctx context.Context, path string, w io.Writer) error {
	ok, err := cloud.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("blob %s does not exist", path)
	}
	return cloud.Download(ctx, path, w)
}

// downloadHTTP downloads a file from the specified URL into w.
func downloadHTTP(ctx context.Context, path string, w io.Writer) error {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server responded with status %s", resp.Status)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}
