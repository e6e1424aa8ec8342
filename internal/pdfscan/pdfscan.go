// Package pdfscan decodes barcodes from PDF files by extracting the
// embedded page images and running each through a scanner.
package pdfscan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/MeKo-Tech/barkit/internal/imgutil"
	"github.com/MeKo-Tech/barkit/internal/scanner"
)

// PageResult is the decode document for one embedded image.
type PageResult struct {
	Page       int               `json:"page"`
	ImageIndex int               `json:"imageIndex"`
	Document   *scanner.Response `json:"document"`
}

// FileResult groups the per-image documents of one PDF.
type FileResult struct {
	Filename string       `json:"filename"`
	Pages    []PageResult `json:"pages"`
}

// ScanFile extracts the embedded images of the selected pages and decodes
// each one. pageRange accepts "", "3", "1-5" or "1,3-4"; empty means all
// pages. maxDim bounds the longer image side before decoding (0 disables).
// Unreadable embedded images are skipped; a decode failure aborts the scan.
func ScanFile(ctx context.Context, sc *scanner.Scanner, filename, pageRange string, maxDim int) (*FileResult, error) {
	pages, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "barkit-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var pageStrings []string
	if len(pages) > 0 {
		pageStrings = make([]string, len(pages))
		for i, p := range pages {
			pageStrings[i] = strconv.Itoa(p)
		}
	}

	if err := api.ExtractImagesFile(filename, tempDir, pageStrings, nil); err != nil {
		return nil, fmt.Errorf("extract images from PDF: %w", err)
	}

	entries, err := collectImageFiles(tempDir)
	if err != nil {
		return nil, fmt.Errorf("collect extracted images: %w", err)
	}

	result := &FileResult{Filename: filepath.Base(filename)}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, _, err := imgutil.LoadFile(e.path)
		if err != nil {
			continue
		}
		img = imgutil.FitWithin(img, maxDim)

		gray, w, h := imgutil.ToGray(img)
		doc, err := sc.DecodeImage(ctx, gray, w, h)
		imgutil.PutGray(gray)
		if err != nil {
			return nil, fmt.Errorf("decode page %d image %d: %w", e.page, e.index, err)
		}

		result.Pages = append(result.Pages, PageResult{
			Page:       e.page,
			ImageIndex: e.index,
			Document:   doc,
		})
	}
	return result, nil
}

type imageEntry struct {
	page  int
	index int
	path  string
}

// collectImageFiles gathers the extracted page images, ordered by page then
// image index. Extraction names files page_<num>_image_<idx>.<ext>.
func collectImageFiles(dir string) ([]imageEntry, error) {
	var entries []imageEntry
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		page, index, ok := parseImageFilename(info.Name())
		if !ok {
			return nil
		}
		entries = append(entries, imageEntry{page: page, index: index, path: path})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].page != entries[j].page {
			return entries[i].page < entries[j].page
		}
		return entries[i].index < entries[j].index
	})
	return entries, nil
}

// parseImageFilename parses "page_<num>_image_<idx>.<ext>".
func parseImageFilename(name string) (page, index int, ok bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) != 4 || parts[0] != "page" || parts[2] != "image" {
		return 0, 0, false
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	index, err = strconv.Atoi(parts[3])
	if err != nil {
		return 0, 0, false
	}
	return page, index, true
}

// parsePageRange parses "", "3", "1-5" or "1,3-4" into page numbers.
// Empty input selects all pages.
func parsePageRange(pageRange string) ([]int, error) {
	if strings.TrimSpace(pageRange) == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	return pages, nil
}

func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		bounds := strings.Split(part, "-")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", bounds[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", bounds[1])
		}
		if start < 1 {
			return nil, fmt.Errorf("page numbers start at 1, got %d", start)
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for p := start; p <= end; p++ {
			out = append(out, p)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	if page < 1 {
		return nil, fmt.Errorf("page numbers start at 1, got %d", page)
	}
	return []int{page}, nil
}
