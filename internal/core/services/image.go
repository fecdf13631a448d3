package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
)

// Ensure ImageAnalyzer implements the port.
var _ driven.ImageAnalyzer = (*ImageAnalyzer)(nil)

// downloadTimeout bounds one image download, redirects included.
const downloadTimeout = 30 * time.Second

// supportedImageMIMEs is the fixed set of image formats the vision model
// accepts. Anything else fails closed.
var supportedImageMIMEs = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
	"image/heic": {},
	"image/heif": {},
}

// visionPrompt is the fixed instruction requesting the constrained
// TYPE / DESCRIPTION / CODE reply the parser expects.
const visionPrompt = "Analyze this image and respond in exactly this format.\n\n" +
	"TYPE: terminal or diagram or other\n" +
	"(terminal = terminal/shell/command output/console capture, " +
	"diagram = diagram/flowchart/architecture drawing, " +
	"other = any other screenshot/table/chart)\n\n" +
	"DESCRIPTION: 1-2 sentence summary of the image's key content (no code fences)\n\n" +
	"CODE:\nIf the image contains code or command output, extract it wrapped in ```. Leave blank otherwise.\n\n" +
	"Rules:\n" +
	"- DESCRIPTION is at most 2 sentences, no filler\n" +
	"- For terminal images keep DESCRIPTION short and put the key commands/output in CODE\n" +
	"- For diagram images summarise the components and flow in DESCRIPTION\n" +
	"- Omit the CODE: line entirely when there is no code"

// ImageAnalyzer downloads an image, classifies it via the vision model,
// and extracts a structured description plus optional verbatim code.
// It fails closed on every error path: the returned analysis carries the
// error class, a descriptive message, and zero cost.
type ImageAnalyzer struct {
	httpClient *http.Client
	vision     driven.VisionModel
	pricing    domain.PriceTable
}

// NewImageAnalyzer creates an analyzer backed by the given vision model.
func NewImageAnalyzer(vision driven.VisionModel, pricing domain.PriceTable) *ImageAnalyzer {
	return &ImageAnalyzer{
		httpClient: &http.Client{Timeout: downloadTimeout},
		vision:     vision,
		pricing:    pricing,
	}
}

// Analyze fetches the image at url and runs the vision analysis. The
// caption, when present, is passed to the model as context.
func (a *ImageAnalyzer) Analyze(ctx context.Context, url, caption string) domain.ImageAnalysis {
	start := time.Now()
	fail := func(msg string) domain.ImageAnalysis {
		return domain.ImageAnalysis{
			Class:       domain.ImageError,
			Description: msg,
			Elapsed:     time.Since(start),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fail(fmt.Sprintf("image could not be downloaded: %v", err))
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Sprintf("image could not be downloaded: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Sprintf("image could not be downloaded: status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Sprintf("image could not be downloaded: %v", err))
	}

	mimeType := contentMIMEType(resp.Header.Get("Content-Type"))
	if _, ok := supportedImageMIMEs[mimeType]; !ok {
		return fail(fmt.Sprintf("image skipped: unsupported format (%s)", mimeType))
	}

	prompt := visionPrompt
	if caption != "" {
		prompt += "\n\nReference caption: " + caption
	}

	raw, usage, err := a.vision.Describe(ctx, prompt, data, mimeType)
	if err != nil {
		return fail(fmt.Sprintf("image analysis failed: %v", err))
	}

	analysis := parseVisionReply(raw)
	analysis.Cost = a.pricing.Cost(a.vision.ModelName(), usage.InputTokens, usage.OutputTokens)
	analysis.Elapsed = time.Since(start)
	return analysis
}

// contentMIMEType strips parameters from a Content-Type header value,
// defaulting to image/png when the header is absent.
func contentMIMEType(header string) string {
	if header == "" {
		return "image/png"
	}
	mime, _, _ := strings.Cut(header, ";")
	return strings.TrimSpace(mime)
}

// parseVisionReply parses the constrained TYPE / DESCRIPTION / CODE reply.
// Lines are scanned once, tracking the active section; section bodies may
// span lines until the next recognized marker. A reply that yields neither
// description nor code falls back to the raw text as the description.
func parseVisionReply(raw string) domain.ImageAnalysis {
	class := domain.ImageOther
	var descLines, codeLines []string
	section := ""

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		stripped := strings.TrimSpace(line)
		upper := strings.ToUpper(stripped)

		switch {
		case strings.HasPrefix(upper, "TYPE:"):
			class = classifyImage(stripped[len("TYPE:"):])
			section = ""
		case strings.HasPrefix(upper, "DESCRIPTION:"):
			descLines = append(descLines, strings.TrimSpace(stripped[len("DESCRIPTION:"):]))
			section = "desc"
		case strings.HasPrefix(upper, "CODE:"):
			if rest := strings.TrimSpace(stripped[len("CODE:"):]); rest != "" {
				codeLines = append(codeLines, rest)
			}
			section = "code"
		case section == "desc":
			descLines = append(descLines, strings.TrimRight(line, " \t"))
		case section == "code":
			codeLines = append(codeLines, strings.TrimRight(line, " \t"))
		}
	}

	description := strings.TrimSpace(strings.Join(descLines, "\n"))
	code := stripCodeFences(strings.TrimSpace(strings.Join(codeLines, "\n")))

	if description == "" && code == "" {
		// Total parse failure: keep the raw reply rather than dropping it.
		description = strings.TrimSpace(raw)
	}

	return domain.ImageAnalysis{
		Class:       class,
		Description: description,
		Code:        code,
	}
}

// classifyImage matches the TYPE value case-insensitively, defaulting to
// other when ambiguous.
func classifyImage(value string) domain.ImageClass {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.Contains(v, "terminal"):
		return domain.ImageTerminal
	case strings.Contains(v, "diagram"):
		return domain.ImageDiagram
	default:
		return domain.ImageOther
	}
}

// stripCodeFences removes a single wrapping fence layer plus an optional
// leading language tag from an extracted code section.
func stripCodeFences(code string) string {
	if !strings.HasPrefix(code, "```") || !strings.HasSuffix(code, "```") {
		return code
	}

	code = code[3:]
	code = strings.TrimSuffix(code, "```")

	// Drop a short language identifier on the first line, if any.
	if idx := strings.Index(code, "\n"); idx != -1 {
		first := strings.TrimSpace(code[:idx])
		if first != "" && len(first) < 20 {
			code = code[idx+1:]
		}
	}

	return strings.TrimSpace(code)
}
