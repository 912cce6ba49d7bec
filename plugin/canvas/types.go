package canvas

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Term is the enrollment term attached to a course when courses are listed
// with include[]=term.
type Term struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Course is a Canvas course as returned by the REST API.
type Course struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	CourseCode       string     `json:"course_code"`
	EnrollmentTermID int64      `json:"enrollment_term_id"`
	Term             *Term      `json:"term"`
	StartAt          *time.Time `json:"start_at"`
	EndAt            *time.Time `json:"end_at"`
	WorkflowState    string     `json:"workflow_state"`
}

// TermName returns the enrollment term name, or "" when Canvas did not
// include one.
func (c *Course) TermName() string {
	if c.Term == nil {
		return ""
	}
	return c.Term.Name
}

// Assignment is a Canvas assignment as returned by the REST API.
// Description carries the raw HTML Canvas stores.
type Assignment struct {
	ID              int64      `json:"id"`
	CourseID        int64      `json:"course_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	DueAt           *time.Time `json:"due_at"`
	PointsPossible  float64    `json:"points_possible"`
	HTMLURL         string     `json:"html_url"`
	SubmissionTypes []string   `json:"submission_types"`
	WorkflowState   string     `json:"workflow_state"`
}

// DescriptionText returns the assignment description with HTML stripped.
// Canvas descriptions are rich text; the AI pipeline wants plain text.
func (a *Assignment) DescriptionText() string {
	if a.Description == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(a.Description))
	if err != nil {
		return a.Description
	}
	return squashSpace(doc.Text())
}

func squashSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
