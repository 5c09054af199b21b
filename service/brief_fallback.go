package service

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"lexbrief-backend/models"
)

// Deterministic brief assembly. Pure text manipulation, no network, no
// error paths: for any non-empty input it produces non-empty output.

const analysisCharLimit = 2000

var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)^(?:IN RE:|REGARDING:)\s*(.{5,100}?)(?:\r?\n|$)`),
	regexp.MustCompile(`(?im)^(?:MATTER OF):?\s*(.{5,100}?)(?:\r?\n|$)`),
	regexp.MustCompile(`(?im)^(?:SUBJECT|TITLE):\s*(.{5,100}?)(?:\r?\n|$)`),
	regexp.MustCompile(`(?im)^(.{5,100}?)\s*(?:AGREEMENT|CONTRACT|OPINION|BRIEF|MOTION)(?:\r?\n|$)`),
}

var (
	factsSectionPattern      = regexp.MustCompile(`(?is)(?:STATEMENT OF FACTS|FACTUAL BACKGROUND|BACKGROUND|FACTS)(?:\r?\n|\s{2,})(.*?)(?:\r?\n\s*\r?\n[A-Z][A-Z\s]+\r?\n|\z)`)
	issuesSectionPattern     = regexp.MustCompile(`(?is)(?:ISSUES|QUESTIONS PRESENTED|LEGAL ISSUES)(?:\r?\n|\s{2,})(.*?)(?:\r?\n\s*\r?\n[A-Z][A-Z\s]+\r?\n|\z)`)
	analysisSectionPattern   = regexp.MustCompile(`(?is)(?:ANALYSIS|ARGUMENT|DISCUSSION|LEGAL ANALYSIS)(?:\r?\n|\s{2,})(.*?)(?:\r?\n\s*\r?\n[A-Z][A-Z\s]+\r?\n|\z)`)
	conclusionSectionPattern = regexp.MustCompile(`(?is)(?:CONCLUSION|PRAYER|WHEREFORE|RELIEF REQUESTED)(?:\r?\n|\s{2,})(.*?)(?:\r?\n\s*\r?\n[A-Z][A-Z\s]+\r?\n|\z)`)
	multiWhitespacePattern   = regexp.MustCompile(`\s{2,}`)
)

var temporalIndicators = []string{"on", "in", "at", "when", "after", "before", "during", "following"}

var disputeIndicators = []string{"whether", "argue", "contend", "allege", "claim", "dispute", "challenge"}

var analysisTerms = []string{
	"court", "ruling", "precedent", "statute", "regulation", "law", "legal",
	"rights", "obligation", "section", "pursuant", "held", "decision",
}

var conclusionTerms = []string{"therefore", "conclusion", "accordingly", "thus", "hence"}

type briefSections struct {
	introduction string
	facts        string
	legalIssues  string
	analysis     string
	conclusion   string
	statutes     string
}

// assembleFallbackBrief builds brief content and summary purely from
// pattern-matched sections of the raw text
func assembleFallbackBrief(title, text string, focusAreas []string, citations []*models.Citation) (string, string) {
	sections := briefSections{
		introduction: generateIntroduction(text),
		facts:        extractFacts(text),
		legalIssues:  identifyLegalIssues(text, focusAreas),
		analysis:     generateLegalAnalysis(text, focusAreas),
		conclusion:   generateConclusion(text),
		statutes:     generateStatutesSection(citations),
	}

	return formatBriefContent(title, sections), summarizeSections(sections)
}

// generateTitle looks for title-like line patterns, then the first
// moderate-length line, then falls back to the filename stem
func generateTitle(text, filename string) string {
	for _, pattern := range titlePatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			title := strings.TrimSpace(match[1])
			if title != "" {
				return "Brief: " + title
			}
		}
	}

	lines := strings.Split(text, "\n")
	limit := 10
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if len(line) > 15 && len(line) < 100 {
			return "Brief: " + line
		}
	}

	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if stem == "" {
		stem = "Untitled Document"
	}
	return "Brief: " + stem
}

func generateIntroduction(text string) string {
	paragraphs := strings.Split(text, "\n\n")

	var introduction []string
	limit := 5
	if len(paragraphs) < limit {
		limit = len(paragraphs)
	}
	for _, para := range paragraphs[:limit] {
		if len(strings.TrimSpace(para)) > 100 {
			introduction = append(introduction, strings.TrimSpace(para))
			if len(introduction) >= 2 {
				break
			}
		}
	}

	if len(introduction) == 0 && len(paragraphs) > 0 {
		introduction = []string{strings.TrimSpace(paragraphs[0])}
	}

	return strings.Join(introduction, "\n\n")
}

func extractFacts(text string) string {
	if match := factsSectionPattern.FindStringSubmatch(text); match != nil {
		facts := strings.TrimSpace(match[1])
		return multiWhitespacePattern.ReplaceAllString(facts, "\n\n")
	}

	// No facts heading: collect sentences with temporal indicators
	sentences := splitSentences(text)
	limit := 30
	if len(sentences) < limit {
		limit = len(sentences)
	}

	var facts []string
	for _, sentence := range sentences[:limit] {
		if len(sentence) > 20 && containsAnyWord(sentence, temporalIndicators) {
			facts = append(facts, sentence)
			if len(facts) >= 5 {
				break
			}
		}
	}

	if len(facts) > 0 {
		return strings.Join(facts, " ")
	}

	return "No clear factual background could be extracted from the document."
}

func identifyLegalIssues(text string, focusAreas []string) string {
	if match := issuesSectionPattern.FindStringSubmatch(text); match != nil {
		issues := strings.TrimSpace(match[1])
		return multiWhitespacePattern.ReplaceAllString(issues, "\n\n")
	}

	var issues []string
	for _, sentence := range splitSentences(text) {
		if len(sentence) > 20 && containsAnyTerm(sentence, disputeIndicators) {
			issues = append(issues, sentence)
			if len(issues) >= 5 {
				break
			}
		}
	}

	if len(issues) == 0 {
		return "No specific legal issues could be identified in the document."
	}

	result := strings.Join(issues, "\n\n")
	if len(focusAreas) > 0 {
		result += "\n\nFocus areas for this brief:"
		for _, area := range focusAreas {
			result += fmt.Sprintf("\n- %s", area)
		}
	}
	return result
}

func generateLegalAnalysis(text string, focusAreas []string) string {
	if match := analysisSectionPattern.FindStringSubmatch(text); match != nil {
		analysis := strings.TrimSpace(match[1])
		analysis = multiWhitespacePattern.ReplaceAllString(analysis, "\n\n")
		if len(analysis) > analysisCharLimit {
			analysis = analysis[:analysisCharLimit] + "...\n[Analysis truncated for brevity]"
		}
		return analysis
	}

	paragraphs := strings.Split(text, "\n\n")
	var analysisParas []string
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if len(para) > 100 && containsAnyTerm(para, analysisTerms) {
			analysisParas = append(analysisParas, para)
			if len(analysisParas) >= 3 {
				break
			}
		}
	}

	if len(analysisParas) == 0 {
		return "No legal analysis could be extracted from the document."
	}

	analysis := strings.Join(analysisParas, "\n\n")

	if len(focusAreas) > 0 {
		analysis += "\n\nFocus Area Analysis:\n"
		for _, area := range focusAreas {
			analysis += fmt.Sprintf("\n%s: ", area)
			snippet := focusAreaSnippet(paragraphs, area)
			if snippet == "" {
				analysis += "No specific analysis found in the document."
			} else {
				analysis += snippet
			}
		}
	}

	return analysis
}

// focusAreaSnippet pulls up to two sentences mentioning the focus area's
// terms from the first paragraph that touches on it
func focusAreaSnippet(paragraphs []string, area string) string {
	areaTerms := strings.Fields(strings.ToLower(area))
	if len(areaTerms) == 0 {
		return ""
	}

	for _, para := range paragraphs {
		if !containsAnyTerm(para, areaTerms) {
			continue
		}
		var relevant []string
		for _, sentence := range splitSentences(para) {
			if containsAnyTerm(sentence, areaTerms) {
				relevant = append(relevant, sentence)
				if len(relevant) >= 2 {
					break
				}
			}
		}
		if len(relevant) > 0 {
			return strings.Join(relevant, " ")
		}
	}
	return ""
}

func generateConclusion(text string) string {
	if match := conclusionSectionPattern.FindStringSubmatch(text); match != nil {
		conclusion := strings.TrimSpace(match[1])
		return multiWhitespacePattern.ReplaceAllString(conclusion, "\n\n")
	}

	paragraphs := strings.Split(text, "\n\n")

	start := len(paragraphs) - 5
	if start < 0 {
		start = 0
	}
	for i := len(paragraphs) - 1; i >= start; i-- {
		para := strings.TrimSpace(paragraphs[i])
		if len(para) > 50 && containsAnyTerm(para, conclusionTerms) {
			return para
		}
	}

	if last := strings.TrimSpace(paragraphs[len(paragraphs)-1]); len(last) > 50 {
		return last
	}

	return "No conclusion could be extracted from the document."
}

func generateStatutesSection(citations []*models.Citation) string {
	if len(citations) == 0 {
		return ""
	}

	var section strings.Builder
	section.WriteString("Referenced Statutes and Regulations:\n\n")
	for _, citation := range citations {
		section.WriteString(fmt.Sprintf("- %s [%s]\n", citation.Reference, currencyStatus(citation)))
		if citation.ContextWindow != "" {
			context := citation.ContextWindow
			if len(context) > 200 {
				context = context[:200] + "..."
			}
			section.WriteString(fmt.Sprintf("  Context: %s\n", context))
		}
	}
	return section.String()
}

func formatBriefContent(title string, sections briefSections) string {
	var content strings.Builder
	content.WriteString(fmt.Sprintf("# %s\n\n", title))

	if sections.introduction != "" {
		content.WriteString(fmt.Sprintf("## Introduction\n\n%s\n\n", sections.introduction))
	}
	content.WriteString(fmt.Sprintf("## Factual Background\n\n%s\n\n", sections.facts))
	content.WriteString(fmt.Sprintf("## Legal Issues\n\n%s\n\n", sections.legalIssues))
	content.WriteString(fmt.Sprintf("## Legal Analysis\n\n%s\n\n", sections.analysis))
	if sections.statutes != "" {
		content.WriteString(fmt.Sprintf("## Statutory References\n\n%s\n\n", sections.statutes))
	}
	content.WriteString(fmt.Sprintf("## Conclusion\n\n%s\n", sections.conclusion))

	return content.String()
}

func summarizeSections(sections briefSections) string {
	var parts []string
	for _, section := range []string{sections.legalIssues, sections.facts, sections.conclusion} {
		if section == "" {
			continue
		}
		first := strings.SplitN(section, "\n\n", 2)[0]
		if len(first) > 150 {
			first = first[:150] + "..."
		}
		parts = append(parts, first)
	}

	summary := strings.Join(parts, " ")
	if summary == "" {
		summary = "This brief analyzes the legal issues and factual background of the document."
	}

	if sections.statutes != "" {
		summary += " The document references various statutes which have been validated for currency."
	}

	return summary
}

func containsAnyTerm(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// containsAnyWord matches whole words only, so short indicators like "on"
// and "at" do not fire inside larger words
func containsAnyWord(text string, words []string) bool {
	for _, field := range strings.Fields(strings.ToLower(text)) {
		field = strings.Trim(field, ".,;:!?\"'()")
		for _, word := range words {
			if field == word {
				return true
			}
		}
	}
	return false
}
