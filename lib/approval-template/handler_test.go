package approvaltemplate

import (
	"testing"

	"github.com/stretchr/testify/require"
	"task-approval-backend/lib/utils/testdb"
	"task-approval-backend/models"
	approvalapimodels "task-approval-backend/models/api/approval"
)

func TestTemplates(t *testing.T) {
	tx := testdb.New(t)
	handler := NewHandlerWithDB(tx)
	depID := testdb.Department(t, tx, "Finance", "")
	cfo := testdb.User(t, tx, "Carl", models.ManagerRole, depID)

	minAmount := 1000.0
	data := approvalapimodels.TemplateData{
		Name:     "Purchase",
		IsActive: true,
		Stages: []approvalapimodels.TemplateStageData{
			{LevelOrder: 2, ApproverType: models.ApproverTypeUser, ApproverValue: cfo,
				Condition: &models.ApprovalCondition{MinAmount: &minAmount}},
			{LevelOrder: 1, ApproverType: models.ApproverTypeDynamicRole, ApproverValue: string(models.DynamicRoleCreatorManager)},
		},
	}

	var id string
	t.Run("create and get", func(t *testing.T) {
		var err error
		id, err = handler.Create(data)
		require.NoError(t, err)

		view, err := handler.Get(id)
		require.NoError(t, err)
		require.Equal(t, "Purchase", view.Name)
		require.Len(t, view.Stages, 2)
		require.Equal(t, 1, view.Stages[0].LevelOrder)
		require.Equal(t, models.ApproverTypeDynamicRole, view.Stages[0].ApproverType)
		require.NotNil(t, view.Stages[1].Condition)
		require.Equal(t, minAmount, *view.Stages[1].Condition.MinAmount)
	})

	t.Run("validation", func(t *testing.T) {
		gap := data
		gap.Name = "Gap"
		gap.Stages = []approvalapimodels.TemplateStageData{
			{LevelOrder: 1, ApproverType: models.ApproverTypeRole, ApproverValue: "FINANCE"},
			{LevelOrder: 3, ApproverType: models.ApproverTypeRole, ApproverValue: "LEGAL"},
		}
		_, err := handler.Create(gap)
		require.ErrorIs(t, err, models.ErrValidation)

		dynamic := data
		dynamic.Name = "Dynamic"
		dynamic.Stages = []approvalapimodels.TemplateStageData{
			{LevelOrder: 1, ApproverType: models.ApproverTypeDynamicRole, ApproverValue: "ceo"},
		}
		_, err = handler.Create(dynamic)
		require.ErrorIs(t, err, models.ErrValidation)

		unknownUser := data
		unknownUser.Name = "Unknown"
		unknownUser.Stages = []approvalapimodels.TemplateStageData{
			{LevelOrder: 1, ApproverType: models.ApproverTypeUser, ApproverValue: "missing"},
		}
		_, err = handler.Create(unknownUser)
		require.ErrorIs(t, err, models.ErrNotFound)

		_, err = handler.Create(approvalapimodels.TemplateData{Name: "Empty"})
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("update replaces stages", func(t *testing.T) {
		updated := approvalapimodels.TemplateData{
			Name:     "Purchase",
			IsActive: false,
			Stages: []approvalapimodels.TemplateStageData{
				{LevelOrder: 1, ApproverType: models.ApproverTypeRole, ApproverValue: "FINANCE"},
			},
		}
		require.NoError(t, handler.Update(id, updated))

		view, err := handler.Get(id)
		require.NoError(t, err)
		require.False(t, view.IsActive)
		require.Len(t, view.Stages, 1)
		require.Equal(t, "FINANCE", view.Stages[0].ApproverValue)

		list, rowCount, err := handler.List(approvalapimodels.TemplateFilter{OnlyActive: true})
		require.NoError(t, err)
		require.Zero(t, rowCount)
		require.Empty(t, list)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, handler.Delete(id))
		_, err := handler.Get(id)
		require.ErrorIs(t, err, models.ErrTemplateNotFound)
		require.ErrorIs(t, handler.Delete(id), models.ErrTemplateNotFound)
	})
}
