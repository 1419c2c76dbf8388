package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdpreview/internal/fileutil"
)

// fileJob is a single markdown file to process.
type fileJob struct {
	InputPath  string
	OutputPath string
}

// discoverFiles maps inputPath to jobs. A file yields one job; a directory
// yields one job per markdown file below it. Output paths take ext.
func discoverFiles(inputPath, outputDir, ext string) ([]fileJob, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "", ext)
		return []fileJob{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var jobs []fileJob
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.IsMarkdown(path) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath, ext)
		jobs = append(jobs, fileJob{InputPath: path, OutputPath: outPath})
		return nil
	})

	return jobs, err
}

// resolveOutputPath determines where the output for a markdown file goes.
// An outputDir ending in ext is taken as the file itself; otherwise the
// relative layout under baseInputDir is mirrored inside outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir, ext string) string {
	name := fileutil.ReplaceExt(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), name)
	}

	if strings.HasSuffix(outputDir, ext) {
		return outputDir
	}

	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), name)
		}
	}

	return filepath.Join(outputDir, name)
}
