package pdfexport

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	taskapimodels "task-approval-backend/models/api/task"
	usersapimodels "task-approval-backend/models/api/users"
)

const (
	fontFamily = "Helvetica"
	dateLayout = "02.01.2006 15:04"
	lineHeight = 6.0
)

var approverColumns = []struct {
	title string
	width float64
}{
	{"Stage", 15},
	{"Approver", 50},
	{"Decision", 25},
	{"Decided at", 35},
	{"Comment", 65},
}

// TaskApprovalSheet renders a task with its approval chain and forwarding path.
func TaskApprovalSheet(task taskapimodels.TaskDetailView, ledger taskapimodels.LedgerView) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("TaskApprovalSheet panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(task.Title), false)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 16)
	pdf.MultiCell(0, 8, tr(task.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 11)
	for _, line := range summaryLines(task) {
		pdf.SetFont(fontFamily, "B", 11)
		pdf.CellFormat(40, lineHeight, tr(line[0]), "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 11)
		pdf.MultiCell(0, lineHeight, tr(line[1]), "", "L", false)
	}
	if task.Description != "" {
		pdf.Ln(2)
		pdf.MultiCell(0, lineHeight, tr(task.Description), "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 13)
	pdf.CellFormat(0, 8, "Approval chain", "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(221, 235, 247)
	for _, column := range approverColumns {
		pdf.CellFormat(column.width, 7, column.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(fontFamily, "", 10)
	if len(task.Approvers) == 0 {
		pdf.CellFormat(0, 7, "No approval required", "1", 1, "L", false, 0, "")
	}
	for _, approver := range task.Approvers {
		decidedAt := ""
		if approver.ActionAt != nil {
			decidedAt = approver.ActionAt.Format(dateLayout)
		}
		cells := []string{
			fmt.Sprint(approver.LevelOrder),
			userName(approver.Approver),
			string(approver.Status),
			decidedAt,
			truncate(approver.Comment, 40),
		}
		for idx, column := range approverColumns {
			pdf.CellFormat(column.width, 7, tr(cells[idx]), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(ledger.Nodes) > 0 {
		pdf.Ln(4)
		pdf.SetFont(fontFamily, "B", 13)
		pdf.CellFormat(0, 8, "Forwarding path", "", 1, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 10)
		for _, node := range ledger.Nodes {
			line := fmt.Sprintf("%s  %s -> %s", node.ForwardedAt.Format(dateLayout), userName(node.FromUser), userName(node.ToUser))
			if node.Comment != "" {
				line += ": " + node.Comment
			}
			pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
		}
	}

	pdf.Ln(6)
	pdf.SetFont(fontFamily, "I", 8)
	pdf.CellFormat(0, 5, "Generated "+time.Now().Format(dateLayout), "", 1, "R", false, 0, "")
	if pdf.Error() != nil {
		return nil, pdf.Error()
	}
	buf := new(bytes.Buffer)
	if err = pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func summaryLines(task taskapimodels.TaskDetailView) [][2]string {
	lines := [][2]string{
		{"Status", task.StatusName},
		{"Creator", userName(task.Creator)},
		{"Assignee", userName(task.Assignee)},
		{"Approval type", string(task.ApprovalType)},
		{"Created", task.CreatedAt.Format(dateLayout)},
	}
	if task.AssigneeRole != "" {
		lines = append(lines, [2]string{"Assignee role", task.AssigneeRole})
	}
	if task.Amount != nil {
		lines = append(lines, [2]string{"Amount", fmt.Sprintf("%.2f", *task.Amount)})
	}
	if task.DueDate != nil {
		due := task.DueDate.Format(dateLayout)
		if task.IsOverdue {
			due += " (overdue)"
		}
		lines = append(lines, [2]string{"Due date", due})
	}
	return lines
}

func userName(user *usersapimodels.UserShort) string {
	if user == nil {
		return "-"
	}
	if user.Name != "" {
		return user.Name
	}
	return user.ID
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
