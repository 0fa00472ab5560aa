// SPDX-FileCopyrightText: Copyright The Reposcope Authors
// SPDX-License-Identifier: Apache-2.0

package seagoat

import (
	"archive/tar"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
)

// Well-known names inside the build context. The Dockerfile references
// run.sh and repo by these names.
const (
	dockerfileName = "Dockerfile"
	runScriptName  = "run.sh"
	repoDirName    = "repo"
)

// imageRepository is the repository part of generated image tags.
const imageRepository = "reposcope/seagoat"

// tagLen is the number of hex digits of the context digest kept in the
// image tag.
const tagLen = 16

var (
	//go:embed templates/Dockerfile.seagoat
	dockerfileTemplate []byte
	//go:embed templates/run.sh
	runScriptTemplate []byte
)

// loadTemplates returns the Dockerfile and run-script bytes. With an
// empty templateDir the embedded defaults are used; otherwise both files
// are read from templateDir, and a missing file surfaces an error
// wrapping fs.ErrNotExist.
func loadTemplates(templateDir string) (dockerfile, runScript []byte, err error) {
	if templateDir == "" {
		return dockerfileTemplate, runScriptTemplate, nil
	}
	dockerfile, err = os.ReadFile(filepath.Join(templateDir, "Dockerfile.seagoat"))
	if err != nil {
		return nil, nil, fmt.Errorf("required control-script template: %w", err)
	}
	runScript, err = os.ReadFile(filepath.Join(templateDir, "run.sh"))
	if err != nil {
		return nil, nil, fmt.Errorf("required control-script template: %w", err)
	}
	return dockerfile, runScript, nil
}

// buildContext assembles the tar build context: the control scripts under
// their well-known names and a full recursive snapshot of repoPath under
// "repo/". The repository is copied verbatim, including hidden files and
// version-control metadata, because the analysis tool may depend on them.
//
// The archive bytes are deterministic for identical content: entries are
// written in lexical walk order and timestamps and ownership are zeroed,
// so the content digest (and therefore the image tag) only changes when
// the repository content or a control script changes.
func buildContext(repoPath, templateDir string) ([]byte, error) {
	dockerfile, runScript, err := loadTemplates(templateDir)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	if err := writeFileEntry(tw, dockerfileName, 0o644, dockerfile); err != nil {
		return nil, err
	}
	if err := writeFileEntry(tw, runScriptName, 0o755, runScript); err != nil {
		return nil, err
	}
	if err := writeRepoEntries(tw, repoPath); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFileEntry(tw *tar.Writer, name string, mode int64, content []byte) error {
	hdr := &tar.Header{
		Name: name,
		Mode: mode,
		Size: int64(len(content)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(content)
	return err
}

// writeRepoEntries archives repoPath under "repo/". filepath.WalkDir
// visits entries in lexical order, which is what makes the byte stream
// stable across runs.
func writeRepoEntries(tw *tar.Writer, repoPath string) error {
	return filepath.WalkDir(repoPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(repoPath, path)
		if err != nil {
			return err
		}
		name := repoDirName
		if rel != "." {
			name = repoDirName + "/" + filepath.ToSlash(rel)
		}

		fi, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case fi.Mode().IsDir():
			hdr := &tar.Header{
				Name:     name + "/",
				Mode:     int64(fi.Mode().Perm()),
				Typeflag: tar.TypeDir,
			}
			return tw.WriteHeader(hdr)
		case fi.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			hdr := &tar.Header{
				Name:     name,
				Mode:     0o777,
				Typeflag: tar.TypeSymlink,
				Linkname: target,
			}
			return tw.WriteHeader(hdr)
		case fi.Mode().IsRegular():
			hdr := &tar.Header{
				Name: name,
				Mode: int64(fi.Mode().Perm()),
				Size: fi.Size(),
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(tw, f)
			return err
		default:
			// Sockets, devices, etc. cannot be represented in an image
			// build context.
			return nil
		}
	})
}

// imageTag derives the content-addressed tag for a build context.
// Identical context bytes always map to the same tag; any byte
// difference yields a different tag.
func imageTag(contextTar []byte) string {
	d := digest.SHA256.FromBytes(contextTar)
	return imageRepository + ":" + d.Encoded()[:tagLen]
}
