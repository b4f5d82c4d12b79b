package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/scrypster/promptcraft/pkg/types"
)

// ParsedPrompt is one Markdown prompt file turned into template fields.
type ParsedPrompt struct {
	// RelativePath is the path relative to the import root directory.
	RelativePath string

	// ID comes from the "id" frontmatter key; empty means one is generated.
	ID string

	Name        string
	Description string
	Tags        []string

	Config        types.BasePromptConfig
	Enhancements  types.EnhancementConfig
	VSEnhancement types.VSConfiguration
}

// Template builds a PromptTemplate from the parsed file. Timestamps and a
// missing ID are left for the caller.
func (p *ParsedPrompt) Template() *types.PromptTemplate {
	return &types.PromptTemplate{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Config:        p.Config,
		VSEnhancement: p.VSEnhancement,
		Enhancements:  p.Enhancements,
		Tags:          p.Tags,
	}
}

// ParsePromptFile parses a Markdown prompt. The body (frontmatter stripped) is
// the base prompt. Recognised frontmatter keys: id, name (or title),
// description, tags, domain, targetOutcome, framework, frameworkConfig,
// enhancements, vsEnhancement. Without a name the first H1 heading is used and
// removed from the body; failing that, the file name.
func ParsePromptFile(content []byte, relativePath string) (*ParsedPrompt, error) {
	fm, body, err := splitFrontmatter(string(content))
	if err != nil {
		return nil, fmt.Errorf("frontmatter parse error in %s: %w", relativePath, err)
	}

	name := extractString(fm, "name", extractString(fm, "title", ""))
	if name == "" {
		if h1, rest := cutH1(body); h1 != "" {
			name, body = h1, rest
		} else {
			name = titleFromPath(relativePath)
		}
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%s: prompt body is empty", relativePath)
	}

	domain := extractString(fm, "domain", "")
	if domain == "" {
		domain = domainFromPath(relativePath)
	}

	framework := types.Framework(extractString(fm, "framework", ""))
	var frameworkConfig types.FrameworkConfig
	if raw, ok := fm["frameworkConfig"]; ok {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: frameworkConfig: %w", relativePath, err)
		}
		if frameworkConfig, err = types.DecodeFrameworkConfig(framework, data); err != nil {
			return nil, fmt.Errorf("%s: %w", relativePath, err)
		}
	} else if !types.IsValidFramework(framework) {
		return nil, fmt.Errorf("%s: unknown framework %q", relativePath, framework)
	}

	parsed := &ParsedPrompt{
		RelativePath: relativePath,
		ID:           extractString(fm, "id", ""),
		Name:         name,
		Description:  extractString(fm, "description", ""),
		Tags:         mergeTags(extractTags(fm), pathTags(relativePath)),
		Config: types.BasePromptConfig{
			BasePrompt:      body,
			Domain:          domain,
			TargetOutcome:   extractString(fm, "targetOutcome", ""),
			Framework:       framework,
			FrameworkConfig: frameworkConfig,
		},
	}
	if err := decodeSection(fm, "enhancements", &parsed.Enhancements); err != nil {
		return nil, fmt.Errorf("%s: %w", relativePath, err)
	}
	if err := decodeSection(fm, "vsEnhancement", &parsed.VSEnhancement); err != nil {
		return nil, fmt.Errorf("%s: %w", relativePath, err)
	}
	return parsed, nil
}

// decodeSection re-encodes a frontmatter subtree as JSON so it decodes through
// the same field names as exported templates.
func decodeSection(fm map[string]interface{}, key string, dst interface{}) error {
	raw, ok := fm[key]
	if !ok || raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// splitFrontmatter separates YAML frontmatter (between --- delimiters) from
// the Markdown body. Returns an empty map and the full text when there is none.
func splitFrontmatter(text string) (map[string]interface{}, string, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, "", err
	}

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return map[string]interface{}{}, text, nil
	}

	closeIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			closeIdx = i
			break
		}
	}
	if closeIdx == -1 {
		return map[string]interface{}{}, text, nil
	}

	fm := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:closeIdx], "\n")), &fm); err != nil {
		return nil, "", fmt.Errorf("invalid YAML: %w", err)
	}
	return fm, strings.Join(lines[closeIdx+1:], "\n"), nil
}

// domainFromPath returns the top-level directory as the domain, or "" for
// files at the root.
func domainFromPath(rel string) string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 {
		return sanitizeSegment(parts[0])
	}
	return ""
}

// pathTags turns nested directories below the domain into tags.
func pathTags(rel string) []string {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	var tags []string
	for i := 1; i < len(parts)-1; i++ {
		if s := sanitizeSegment(parts[i]); s != "" {
			tags = append(tags, s)
		}
	}
	return tags
}

// titleFromPath derives a human-readable title from the file name.
func titleFromPath(rel string) string {
	base := filepath.Base(rel)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}

// cutH1 returns the first ATX level-one heading and the body without it.
func cutH1(body string) (string, string) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			rest := append(append([]string{}, lines[:i]...), lines[i+1:]...)
			return strings.TrimSpace(line[2:]), strings.Join(rest, "\n")
		}
	}
	return "", body
}

// extractTags reads tags from frontmatter. Handles both list and string forms.
func extractTags(fm map[string]interface{}) []string {
	switch v := fm["tags"].(type) {
	case []interface{}:
		var tags []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				tags = append(tags, strings.TrimSpace(s))
			}
		}
		return tags
	case string:
		var tags []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		return tags
	}
	return nil
}

// extractString pulls a string value from frontmatter by key with a default.
func extractString(fm map[string]interface{}, key, defaultVal string) string {
	if s, ok := fm[key].(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return defaultVal
}

// mergeTags combines two tag slices deduplicating by lowercase value.
func mergeTags(a, b []string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, tag := range append(append([]string{}, a...), b...) {
		lower := strings.ToLower(tag)
		if !seen[lower] {
			seen[lower] = true
			result = append(result, tag)
		}
	}
	return result
}

// sanitizeSegment makes a path segment safe to use as a domain or tag.
func sanitizeSegment(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
