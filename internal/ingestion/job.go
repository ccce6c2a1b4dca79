// Package ingestion turns job postings into clean plain text, whether they
// arrive as local files or URLs.
package ingestion

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the HTTP request fails
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
	// ErrEmptyJobPosting is returned when ingestion produced no usable text
	ErrEmptyJobPosting = fmt.Errorf("job posting is empty")
)

// JobFromFile reads a job posting text file and returns the cleaned text.
func JobFromFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("job file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read job file: %w", err)
	}

	cleaned := CleanText(string(content))
	if cleaned == "" {
		return "", ErrEmptyJobPosting
	}
	return cleaned, nil
}

// JobFromURL fetches a job posting page, extracts the posting text, and
// returns it cleaned. When useBrowser is set and the HTTP fetch yields too
// little text, the page is re-rendered in a headless browser before giving
// up on it.
func JobFromURL(ctx context.Context, urlStr string, useBrowser, verbose bool) (string, error) {
	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	if verbose {
		log.Printf("[VERBOSE] Fetched HTML: %d bytes", len(result.HTML))
	}

	textContent, err := fetch.ExtractMainText(result.HTML, fetch.JobPostingSelectors())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if useBrowser && fetch.ShouldUseBrowser(textContent) {
		if verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), falling back to browser rendering",
				len(textContent), fetch.MinContentLength)
		}

		browserHTML, browserErr := fetch.BrowserSimple(ctx, urlStr, verbose)
		if browserErr != nil {
			if verbose {
				log.Printf("[VERBOSE] Browser rendering failed: %v, using HTTP content", browserErr)
			}
			// Keep the HTTP content when the browser fails
		} else if extracted, exErr := fetch.ExtractMainText(browserHTML, fetch.JobPostingSelectors()); exErr == nil {
			textContent = extracted
		}
	}

	cleaned := CleanText(textContent)
	if cleaned == "" {
		return "", ErrEmptyJobPosting
	}
	return cleaned, nil
}

var multiSpace = regexp.MustCompile(`\s+`)
var excessBlankLines = regexp.MustCompile(`\n\n\n+`)

// CleanText normalizes job posting text: line endings, per-line whitespace,
// and blank-line runs, while preserving headings and bullet lists.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = excessBlankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")

	// Keep markdown headings as-is, normalize leading spaces to 0
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	// Preserve bullet indentation
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") {
		indent := len(line) - len(trimmed)
		if indent > 0 {
			return strings.Repeat(" ", indent) + trimmed
		}
		return trimmed
	}

	leadingSpace := len(line) - len(trimmed)
	content := multiSpace.ReplaceAllString(strings.TrimSpace(line), " ")
	if leadingSpace > 0 {
		return strings.Repeat(" ", leadingSpace) + content
	}
	return content
}
