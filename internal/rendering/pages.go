package rendering

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// pageCounter reads the page total from a finished PDF. The fit loop only
// needs the total, not the layout, so any tool that can report it will do.
type pageCounter func(pdfPath string) (int, error)

var pageCounters = []pageCounter{pagesFromPdfinfo, pagesFromGhostscript}

// CountPDFPages reports how many pages a compiled resume occupies, trying
// pdfinfo first and ghostscript as a fallback.
func CountPDFPages(pdfPath string) (int, error) {
	for _, count := range pageCounters {
		if n, err := count(pdfPath); err == nil {
			return n, nil
		}
	}

	return 0, &RenderError{
		Message: "failed to count PDF pages: neither pdfinfo nor ghostscript available. Please install poppler-utils (pdfinfo) or ghostscript",
	}
}

// pagesFromPdfinfo reads the "Pages:" line of pdfinfo output.
func pagesFromPdfinfo(pdfPath string) (int, error) {
	output, err := exec.Command("pdfinfo", pdfPath).Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo command failed: %w", err)
	}

	for _, line := range strings.Split(string(output), "\n") {
		rest, ok := strings.CutPrefix(line, "Pages:")
		if !ok {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return 0, fmt.Errorf("malformed pdfinfo Pages line: %q", line)
		}
		return count, nil
	}

	return 0, fmt.Errorf("no Pages line in pdfinfo output")
}

// pagesFromGhostscript asks the gs interpreter for pdfpagecount.
func pagesFromGhostscript(pdfPath string) (int, error) {
	script := fmt.Sprintf("(%s) (r) file runpdfbegin pdfpagecount = quit", pdfPath)
	output, err := exec.Command("gs", "-q", "-dNODISPLAY", "-c", script).Output()
	if err != nil {
		return 0, fmt.Errorf("ghostscript command failed: %w", err)
	}

	outputStr := strings.TrimSpace(string(output))
	count, err := strconv.Atoi(outputStr)
	if err != nil {
		return 0, fmt.Errorf("could not parse page count from ghostscript output: %s", outputStr)
	}

	return count, nil
}
