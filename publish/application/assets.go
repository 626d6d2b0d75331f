package application

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/frankhjung/blogspot-publishing/publish/domain"
)

var imgSrcRegex = regexp.MustCompile(`(?i)(<img\b[^>]*?\bsrc\s*=\s*)(["'])([^"']+)(["'])`)

// InlineLocalImages rewrites every local image reference in the HTML into a
// base64 data URI so the published post has no dependency on files that only
// exist in the CI workspace. Remote and already-inlined references are left
// untouched. The substitution is textual, so markup that is not rewritten
// stays byte-identical.
//
// baseDir is the directory local references are resolved against, normally
// the directory of the source document. A reference that cannot be read is a
// fatal input error: the run must not publish broken image links.
func InlineLocalImages(input []byte, baseDir string) ([]byte, error) {
	var inlineErr error
	inlined := 0

	out := imgSrcRegex.ReplaceAllFunc(input, func(match []byte) []byte {
		if inlineErr != nil {
			return match
		}

		groups := imgSrcRegex.FindSubmatch(match)
		ref := string(groups[3])
		if isRemoteRef(ref) {
			return match
		}

		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, ref)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			inlineErr = &domain.AssetMissingError{Ref: ref, Path: path, Err: err}
			return match
		}

		uri := fmt.Sprintf("data:%s;base64,%s", detectMIME(path, data), base64.StdEncoding.EncodeToString(data))
		inlined++

		rewritten := make([]byte, 0, len(groups[1])+len(uri)+2)
		rewritten = append(rewritten, groups[1]...)
		rewritten = append(rewritten, groups[2]...)
		rewritten = append(rewritten, uri...)
		rewritten = append(rewritten, groups[4]...)
		return rewritten
	})

	if inlineErr != nil {
		return nil, inlineErr
	}
	if inlined > 0 {
		log.Debug().Int("images", inlined).Msg("Inlined local images as data URIs")
	}
	return out, nil
}

// isRemoteRef reports whether an image reference points somewhere the
// destination can fetch on its own, which means it must not be inlined.
func isRemoteRef(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "//")
}

// detectMIME sniffs content first and falls back to the file extension, so
// extensionless files still get a usable type.
func detectMIME(path string, data []byte) string {
	detected := mimetype.Detect(data)
	if detected.String() != "application/octet-stream" {
		return detected.String()
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return detected.String()
}
