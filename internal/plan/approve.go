package plan

import (
	"fmt"
	"strings"

	"github.com/pders01/extraction-plan/internal/models"
)

// SetApproval rewrites the Approval Status of risky operation number in the
// plan text. Only the REQUIRES USER APPROVAL section is touched; a block
// without a status line gets one appended.
func SetApproval(text string, number int, status models.ApprovalStatus) (string, error) {
	out, n, err := setApprovals(text, status, func(b block) bool { return b.number == number })
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", fmt.Errorf("risky operation %d not found", number)
	}
	return out, nil
}

// SetAllApprovals sets every risky operation to status and returns how many
// blocks were updated
func SetAllApprovals(text string, status models.ApprovalStatus) (string, int, error) {
	return setApprovals(text, status, func(block) bool { return true })
}

func setApprovals(text string, status models.ApprovalStatus, match func(block) bool) (string, int, error) {
	switch status {
	case models.StatusApproved, models.StatusPending, models.StatusRejected:
	default:
		return "", 0, fmt.Errorf("invalid approval status %q", status)
	}

	d := scan(text)
	start, end, ok := d.section(RiskySection)
	if !ok {
		return "", 0, &ParseError{Section: RiskySection}
	}

	lines := make([]string, len(d.lines))
	for i, l := range d.lines {
		lines[i] = l.raw
	}

	// Insertions shift later indices, so walk blocks from the bottom up
	blocks := d.blocks(start, end)
	updated := 0
	for bi := len(blocks) - 1; bi >= 0; bi-- {
		b := blocks[bi]
		if !match(b) {
			continue
		}
		updated++

		replaced := false
		for i := b.start; i < b.end; i++ {
			label, _, ok := d.lines[i].field()
			if !ok || !strings.EqualFold(label, LabelApprovalStatus) {
				continue
			}
			lines[i] = rewriteValue(d.lines[i].raw, string(status))
			replaced = true
			break
		}
		if replaced {
			continue
		}

		last := b.start
		for i := b.start; i < b.end; i++ {
			if strings.TrimSpace(d.lines[i].text) != "" {
				last = i
			}
		}
		insert := fmt.Sprintf("%s**%s**: %s", fieldIndent, LabelApprovalStatus, status)
		lines = append(lines[:last+1], append([]string{insert}, lines[last+1:]...)...)
	}

	return strings.Join(lines, "\n"), updated, nil
}

// rewriteValue replaces everything after the label's colon, keeping the
// line prefix and any trailing \r
func rewriteValue(raw, value string) string {
	cr := ""
	if strings.HasSuffix(raw, "\r") {
		cr = "\r"
		raw = strings.TrimSuffix(raw, "\r")
	}
	idx := strings.Index(raw, "**:")
	if idx < 0 {
		return raw + cr
	}
	return raw[:idx+3] + " " + value + cr
}
