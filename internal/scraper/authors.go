package scraper

import (
	"strings"

	"tebeosfera-scraper/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// authorRole maps role-word stems to the role lists a name is added to
type authorRole struct {
	stems []string
	lists func(rec *models.IssueRecord) []*[]string
}

// authorRoles is checked in order and the first matching stem wins.
// A historietista both writes and draws.
var authorRoles = []authorRole{
	{[]string{"historietista"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.Writers, &r.Pencillers} }},
	{[]string{"guion", "guión", "script", "writer"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.Writers} }},
	{[]string{"dibuj", "draw", "pencil"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.Pencillers} }},
	{[]string{"tint", "ink"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.Inkers} }},
	{[]string{"color"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.Colorists} }},
	{[]string{"letr", "rotul", "rótul"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.Letterers} }},
	{[]string{"portad", "cubiert", "cover"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.CoverArtists} }},
	{[]string{"editor"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.Editors} }},
	{[]string{"traduc", "translat"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.Translators} }},
	{[]string{"adapt"}, func(r *models.IssueRecord) []*[]string { return []*[]string{&r.AdaptedAuthors} }},
}

// extractAuthors reads every role caption and the name links that follow it
func (e *IssueExtractor) extractAuthors(doc *goquery.Document, rec *models.IssueRecord) {
	doc.Find(AuthorRoleSelector).Each(func(_ int, span *goquery.Selection) {
		role := strings.ToLower(Flatten(e.regexes["digits"].ReplaceAllString(span.Text(), "")))
		if role == "" {
			return
		}
		target := matchRole(role)
		if target == nil {
			return
		}

		for _, name := range e.roleNames(span) {
			for _, list := range target.lists(rec) {
				*list = appendUnique(*list, name)
			}
		}
	})
}

func matchRole(role string) *authorRole {
	for i := range authorRoles {
		for _, stem := range authorRoles[i].stems {
			if strings.Contains(role, stem) {
				return &authorRoles[i]
			}
		}
	}
	return nil
}

// roleNames collects up to MaxAuthorsPerRole sibling links after the caption,
// stopping at a structural element or at the next caption.
func (e *IssueExtractor) roleNames(span *goquery.Selection) []string {
	var names []string
	span.NextAll().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		switch goquery.NodeName(s) {
		case "a":
			if name := e.normalizer.Text(s); name != "" {
				names = append(names, name)
			}
		case "div", "p":
			return false
		case "span":
			if s.HasClass("tab_subtitulo") {
				return false
			}
		}
		return len(names) < MaxAuthorsPerRole
	})
	return names
}
