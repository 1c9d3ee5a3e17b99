package services

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"alfredoptarigan/resume-ranker/internal/models"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoTextContent     = errors.New("no text content found in document")
)

// CommonSkills is matched against every résumé on word boundaries.
var CommonSkills = []string{
	// languages
	"python", "java", "javascript", "c++", "c#", "ruby", "php", "swift", "kotlin", "go", "typescript",
	// web
	"html", "css", "react", "angular", "vue", "node.js", "express", "django", "flask", "spring boot",
	// databases
	"sql", "mysql", "postgresql", "mongodb", "oracle", "sqlite", "elasticsearch", "redis", "cassandra",
	// cloud
	"aws", "azure", "gcp", "google cloud", "heroku", "kubernetes", "docker", "terraform",
	// data
	"machine learning", "deep learning", "data analysis", "pandas", "numpy", "tensorflow", "pytorch",
	"scikit-learn", "r", "hadoop", "spark", "tableau", "power bi", "data visualization",
	// other
	"git", "github", "ci/cd", "jenkins", "jira", "agile", "scrum", "devops", "restful api", "graphql",
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)

	degreePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:B\.?S\.?|Bachelor of Science|Bachelor's)\b`),
		regexp.MustCompile(`(?i)\b(?:B\.?A\.?|Bachelor of Arts)\b`),
		regexp.MustCompile(`(?i)\b(?:M\.?S\.?|Master of Science|Master's)\b`),
		regexp.MustCompile(`(?i)\b(?:M\.?B\.?A\.?|Master of Business Administration)\b`),
		regexp.MustCompile(`(?i)\b(?:Ph\.?D\.?|Doctor of Philosophy|Doctorate)\b`),
	}
	yearPattern        = regexp.MustCompile(`20\d\d|19\d\d`)
	universityOfPattern = regexp.MustCompile(`\b(?:University|College|Institute|School) of [A-Za-z\s]+\b`)
	namedUniversity    = regexp.MustCompile(`\b[A-Z][a-z]+ (?:University|College|Institute|School)\b`)

	skillsHeader     = regexp.MustCompile(`(?i)\n\s*(?:SKILLS|TECHNICAL SKILLS).*?\n`)
	experienceHeader = regexp.MustCompile(`(?i)\n\s*(?:EXPERIENCE|WORK EXPERIENCE|PROFESSIONAL EXPERIENCE).*?\n`)
	skillSeparators  = regexp.MustCompile(`[,;|•·\n\t]+|\s+-\s+`)

	// titles and companies never span lines
	jobPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?P<title>[A-Z][A-Za-z \t]+?)[ \t]+(?:at|@)[ \t]+(?P<company>[A-Z][A-Za-z \t]+)[ \t]+(?P<date>\d{1,2}/\d{1,2}|\d{4}\s*[-–—]\s*(?:Present|Current|\d{4}))`),
		regexp.MustCompile(`(?P<company>[A-Z][A-Za-z \t]+)[ \t]*[,|][ \t]*(?P<title>[A-Za-z \t]+?)[ \t]+(?P<date>\d{1,2}/\d{1,2}|\d{4}\s*[-–—]\s*(?:Present|Current|\d{4}))`),
		regexp.MustCompile(`(?P<title>[A-Z][A-Za-z \t]+?)\n(?P<company>[A-Z][A-Za-z \t]+)\n(?P<date>\d{1,2}/\d{1,2}|\d{4}\s*[-–—]\s*(?:Present|Current|\d{4}))`),
	}
	yearRange       = regexp.MustCompile(`(\d{4})\s*[-–—]\s*(\d{4}|Present|Current)`)
	yearsOfExpProse = regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years|yrs)(?:\s+of)?\s+experience`)

	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTab          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)

	skillMatchers = compileSkillMatchers(CommonSkills)
)

const maxSummaryRunes = 1000

// ParsedResume holds the fields extracted from one résumé.
type ParsedResume struct {
	Name              string
	Email             string
	Phone             string
	Skills            []string
	Education         []models.EducationEntry
	Experience        []models.ExperienceEntry
	ExperienceYears   float64
	ExperienceSummary string
	Text              string
}

type ResumeParser interface {
	ExtractText(filename string, data []byte) (string, error)
	Parse(filename string, data []byte) (*ParsedResume, error)
	ParseText(text string) *ParsedResume
}

type resumeParser struct {
	now func() time.Time
}

// NewResumeParser returns a parser. now resolves "Present" in date ranges
// and defaults to time.Now.
func NewResumeParser(now func() time.Time) ResumeParser {
	if now == nil {
		now = time.Now
	}
	return &resumeParser{now: now}
}

// ExtractText dispatches on the file extension.
func (p *resumeParser) ExtractText(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		text, err = extractPDFText(data)
	case ".docx":
		text, err = extractDocxText(data)
	case ".txt":
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoTextContent
	}
	return text, nil
}

func (p *resumeParser) Parse(filename string, data []byte) (*ParsedResume, error) {
	text, err := p.ExtractText(filename, data)
	if err != nil {
		return nil, err
	}
	return p.ParseText(text), nil
}

func (p *resumeParser) ParseText(text string) *ParsedResume {
	entries, years := p.extractExperience(text)

	return &ParsedResume{
		Name:              extractName(text),
		Email:             emailPattern.FindString(text),
		Phone:             phonePattern.FindString(text),
		Skills:            extractSkills(text),
		Education:         extractEducation(text),
		Experience:        entries,
		ExperienceYears:   years,
		ExperienceSummary: experienceSection(text),
		Text:              text,
	}
}

func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var b strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		b.WriteString(pageText)
		b.WriteString("\n\n")
	}

	return b.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return wordXMLToText(doc.Editable().GetContent()), nil
}

// wordXMLToText flattens WordprocessingML into one line per paragraph.
func wordXMLToText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	return strings.TrimSpace(html.UnescapeString(content))
}

func extractName(text string) string {
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines) && i < 5; i++ {
		line := strings.TrimSpace(lines[i])
		if utf8.RuneCountInString(line) <= 2 || len(strings.Fields(line)) > 4 {
			continue
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, "resume") || strings.Contains(lower, "cv") ||
			strings.Contains(lower, "curriculum") || strings.Contains(lower, "vitae") {
			continue
		}
		return line
	}
	return "Unknown"
}

func extractEducation(text string) []models.EducationEntry {
	education := []models.EducationEntry{}

	for _, pattern := range degreePatterns {
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			context := text[runeFloor(text, loc[0]-30):runeFloor(text, loc[1]+30)]

			university := universityOfPattern.FindString(context)
			if university == "" {
				university = namedUniversity.FindString(context)
			}

			education = append(education, models.EducationEntry{
				Degree:     text[loc[0]:loc[1]],
				University: strings.TrimSpace(university),
				Year:       yearPattern.FindString(context),
			})
		}
	}

	return education
}

// runeFloor clamps i into text and moves it back to a rune boundary.
func runeFloor(text string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

func compileSkillMatchers(skills []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(skills))
	for i, s := range skills {
		out[i] = regexp.MustCompile(`(?:^|[^a-z0-9_])` + regexp.QuoteMeta(s) + `(?:[^a-z0-9_]|$)`)
	}
	return out
}

func extractSkills(text string) []string {
	seen := make(map[string]bool)
	skills := []string{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			skills = append(skills, s)
		}
	}

	lower := strings.ToLower(text)
	for i, m := range skillMatchers {
		if m.MatchString(lower) {
			add(CommonSkills[i])
		}
	}

	for _, item := range skillSectionItems(text) {
		add(item)
	}

	return skills
}

func skillSectionItems(text string) []string {
	loc := skillsHeader.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	section := text[loc[1]:]
	if end := strings.Index(section, "\n\n"); end >= 0 {
		section = section[:end]
	}

	var items []string
	for _, raw := range skillSeparators.Split(section, -1) {
		item := strings.ToLower(strings.Trim(raw, " \t-*.:"))
		if utf8.RuneCountInString(item) > 2 && len(strings.Fields(item)) <= 4 {
			items = append(items, item)
		}
	}
	return items
}

func experienceSection(text string) string {
	loc := experienceHeader.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	section := strings.TrimSpace(text[loc[1]:])
	if utf8.RuneCountInString(section) > maxSummaryRunes {
		section = string([]rune(section)[:maxSummaryRunes])
	}
	return section
}

func (p *resumeParser) extractExperience(text string) ([]models.ExperienceEntry, float64) {
	entries := []models.ExperienceEntry{}
	seen := make(map[string]bool)
	total := 0

	for _, pattern := range jobPatterns {
		titleIdx := pattern.SubexpIndex("title")
		companyIdx := pattern.SubexpIndex("company")
		dateIdx := pattern.SubexpIndex("date")

		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			title := strings.TrimSpace(m[titleIdx])
			company := strings.TrimSpace(m[companyIdx])

			dm := yearRange.FindStringSubmatch(m[dateIdx])
			if dm == nil {
				continue
			}

			start, _ := strconv.Atoi(dm[1])
			endLabel := dm[2]
			end := p.now().Year()
			if !strings.EqualFold(endLabel, "present") && !strings.EqualFold(endLabel, "current") {
				end, _ = strconv.Atoi(endLabel)
			}

			// the patterns overlap, count each role once
			key := fmt.Sprintf("%s|%s|%d", strings.ToLower(title), strings.ToLower(company), start)
			if seen[key] {
				continue
			}
			seen[key] = true

			duration := end - start
			if duration < 0 {
				continue
			}
			total += duration
			entries = append(entries, models.ExperienceEntry{
				Title:     title,
				Company:   company,
				StartYear: start,
				EndYear:   endLabel,
				Duration:  duration,
			})
		}
	}

	if len(entries) == 0 {
		if m := yearsOfExpProse.FindStringSubmatch(text); m != nil {
			total, _ = strconv.Atoi(m[1])
		}
	}

	return entries, float64(total)
}
