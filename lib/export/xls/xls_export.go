package xlsexport

import (
	"bytes"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	approvalapimodels "task-approval-backend/models/api/approval"
)

const dateLayout = "02.01.2006 15:04"

type Provider interface {
	ExportApprovalHistory(list []approvalapimodels.ApprovalView) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{}
}

type impl struct{}

var historyHeaders = []string{"Task", "Status of task", "Stage", "Decision", "Decided at", "Comment", "Creator", "Due date"}

func (i impl) ExportApprovalHistory(list []approvalapimodels.ApprovalView) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("unable to close xlsx file")
		}
	}()
	sheet := "Sheet1"
	row, err := writeHeader(f, sheet, 0, historyHeaders, 22)
	if err != nil {
		return nil, errors.Wrap(err, "unable to write xlsx header")
	}
	if err = applyDataStyle(f, sheet, 1, row+1, len(historyHeaders), row+len(list)); err != nil {
		return nil, errors.Wrap(err, "unable to style xlsx data")
	}
	for _, item := range list {
		row++
		values := []interface{}{
			item.Task.Title,
			item.Task.StatusName,
			item.LevelOrder,
			string(item.Status),
			"",
			item.Comment,
			"",
			"",
		}
		if item.ActionAt != nil {
			values[4] = item.ActionAt.Format(dateLayout)
		}
		if item.Task.Creator != nil {
			values[6] = item.Task.Creator.Name
		}
		if item.Task.DueDate != nil {
			values[7] = item.Task.DueDate.Format(dateLayout)
		}
		for idx, value := range values {
			if value == "" {
				continue
			}
			if err = writeCell(f, sheet, idx+1, row, value); err != nil {
				return nil, errors.Wrap(err, "unable to write xlsx row")
			}
		}
	}
	if err = f.SetSheetName(sheet, "Approval history"); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}
