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
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/spatialmodel/aodsubset/cloud"
)

// uploadTempRoot is the directory temporary output files are created in.
// If it is empty, the system temporary directory is used.
var uploadTempRoot = ""

type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the upload method is run.
func (u *uploader) maybeUpload(p string) string {
	if u.err != nil {
		return ""
	}
	if !cloud.IsBlob(p) {
		return p
	}
	if u.dir == "" {
		u.dir, u.err = ioutil.TempDir(uploadTempRoot, "aodsubset")
		if u.err != nil {
			return ""
		}
	}
	// Prefix with the file number in case more than one output
	// has the same base name.
	local := filepath.Join(u.dir, strconv.Itoa(len(u.files))+"_"+path.Base(p))
	u.files = append(u.files, [2]string{local, p})
	return local
}

// upload copies all of the temporary files created by maybeUpload
// to their blob storage locations and then removes them.
func (u *uploader) upload(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	defer u.cleanup()
	for _, files := range u.files {
		if err := u.uploadFile(ctx, files[0], files[1]); err != nil {
			return err
		}
	}
	return nil
}

// cleanup removes the temporary files created by maybeUpload.
// It is safe to call more than once.
func (u *uploader) cleanup() {
	if u.dir != "" {
		os.RemoveAll(u.dir)
	}
}

func (u *uploader) uploadFile(ctx context.Context, local, remote string) error {
	r, err := os.Open(local)
	if os.IsNotExist(err) {
		return nil // Nothing was written to this location.
	} else if err != nil {
		return fmt.Errorf("aodutil: opening file '%s' for upload: %w", local, err)
	}
	defer r.Close()
	if err := cloud.Upload(ctx, r, remote); err != nil {
		return fmt.Errorf("aodutil: uploading file '%s' to '%s': %w", local, remote, err)
	}
	return nil
}
