package approvalchain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"task-approval-backend/lib/utils/testdb"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

func TestBuild(t *testing.T) {
	tx := testdb.New(t)
	ctx := context.Background()
	builder := NewInstance(tx)

	rootID := testdb.Department(t, tx, "Head office", "")
	salesID := testdb.Department(t, tx, "Sales", rootID)
	director := testdb.User(t, tx, "Director", models.ManagerRole, rootID)
	time.Sleep(2 * time.Millisecond)
	salesLead := testdb.User(t, tx, "Sales Lead", models.ManagerRole, salesID)
	creator := testdb.User(t, tx, "Creator", models.UserRoleStd, salesID)
	assignee := testdb.User(t, tx, "Assignee", models.UserRoleStd, salesID)
	peer1 := testdb.User(t, tx, "Peer One", models.UserRoleStd, salesID)
	peer2 := testdb.User(t, tx, "Peer Two", models.UserRoleStd, salesID)
	financeHQ := testdb.User(t, tx, "Finance HQ", "FINANCE", rootID)
	financeSales := testdb.User(t, tx, "Finance Sales", "FINANCE", salesID)
	retired := testdb.User(t, tx, "Retired", models.UserRoleStd, salesID)
	testdb.Deactivate(t, tx, retired)

	t.Run("specific keeps order", func(t *testing.T) {
		chain, err := builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalTypeSpecific, ApproverIDs: []string{peer2, peer1}})
		require.NoError(t, err)
		require.Equal(t, []ChainLink{{1, peer2}, {2, peer1}}, chain)
	})
	t.Run("specific errors", func(t *testing.T) {
		_, err := builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalTypeSpecific})
		require.ErrorIs(t, err, models.ErrEmptyChain)
		_, err = builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalTypeSpecific, ApproverIDs: []string{"missing"}})
		require.ErrorIs(t, err, models.ErrNotFound)
		_, err = builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalTypeSpecific, ApproverIDs: []string{retired}})
		require.ErrorIs(t, err, models.ErrUnresolvableApprover)
		_, err = builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalTypeSpecific, ApproverIDs: []string{peer1, peer1}})
		require.ErrorIs(t, err, models.ErrValidation)
	})
	t.Run("360 uses department peers", func(t *testing.T) {
		chain, err := builder.Build(ctx, ChainRequest{
			ApprovalType: models.ApprovalType360,
			CreatorID:    creator,
			AssigneeID:   assignee,
			DepartmentID: salesID,
		})
		require.NoError(t, err)
		ids := []string{}
		for _, link := range chain {
			require.Equal(t, 1, link.LevelOrder)
			ids = append(ids, link.ApproverUserID)
		}
		require.ElementsMatch(t, []string{salesLead, peer1, peer2, financeSales}, ids)
	})
	t.Run("360 explicit peers", func(t *testing.T) {
		chain, err := builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalType360, PeerIDs: []string{peer1, peer2, peer1}})
		require.NoError(t, err)
		require.Equal(t, []ChainLink{{1, peer1}, {1, peer2}}, chain)
	})
	t.Run("360 without peers", func(t *testing.T) {
		emptyID := testdb.Department(t, tx, "Empty", rootID)
		_, err := builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalType360, DepartmentID: emptyID})
		require.ErrorIs(t, err, models.ErrNoPeersFound)
		_, err = builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalType360})
		require.ErrorIs(t, err, models.ErrNoPeersFound)
	})
	t.Run("none", func(t *testing.T) {
		chain, err := builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalTypeNone})
		require.NoError(t, err)
		require.Empty(t, chain)
	})

	template := dbmodels.ApprovalTemplate{
		Name:      "Purchase",
		Condition: datatypes.JSON(`{"min_amount": 100}`),
		IsActive:  true,
		Stages: []dbmodels.ApprovalTemplateStage{
			{LevelOrder: 1, ApproverType: models.ApproverTypeDynamicRole, ApproverValue: string(models.DynamicRoleCreatorManager)},
			{LevelOrder: 2, ApproverType: models.ApproverTypeRole, ApproverValue: "finance"},
			{LevelOrder: 3, ApproverType: models.ApproverTypeDynamicRole, ApproverValue: string(models.DynamicRoleParentDepartmentManager), Condition: datatypes.JSON(`{"min_amount": 10000}`)},
			{LevelOrder: 4, ApproverType: models.ApproverTypeUser, ApproverValue: director},
		},
	}
	require.NoError(t, tx.Create(&template).Error)
	amount := func(v float64) *float64 { return &v }

	t.Run("predefined resolves and renumbers", func(t *testing.T) {
		chain, err := builder.Build(ctx, ChainRequest{
			ApprovalType: models.ApprovalTypePredefined,
			TemplateID:   template.ID,
			CreatorID:    creator,
			DepartmentID: salesID,
			Amount:       amount(500),
		})
		require.NoError(t, err)
		require.Equal(t, []ChainLink{{1, salesLead}, {2, financeSales}, {3, director}}, chain)
	})
	t.Run("predefined stage condition", func(t *testing.T) {
		chain, err := builder.Build(ctx, ChainRequest{
			ApprovalType: models.ApprovalTypePredefined,
			TemplateID:   template.ID,
			CreatorID:    creator,
			DepartmentID: salesID,
			Amount:       amount(20000),
		})
		require.NoError(t, err)
		require.Equal(t, []ChainLink{{1, salesLead}, {2, financeSales}, {3, director}, {4, director}}, chain)
	})
	t.Run("role falls back outside department", func(t *testing.T) {
		chain, err := builder.Build(ctx, ChainRequest{
			ApprovalType: models.ApprovalTypePredefined,
			TemplateID:   template.ID,
			CreatorID:    director,
			Amount:       amount(500),
		})
		require.ErrorIs(t, err, models.ErrUnresolvableApprover)
		require.Nil(t, chain)

		creatorChain, err := builder.Build(ctx, ChainRequest{
			ApprovalType: models.ApprovalTypePredefined,
			TemplateID:   template.ID,
			CreatorID:    creator,
			Amount:       amount(500),
		})
		require.NoError(t, err)
		require.Equal(t, financeHQ, creatorChain[1].ApproverUserID)
	})
	t.Run("predefined template errors", func(t *testing.T) {
		_, err := builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalTypePredefined, TemplateID: "missing"})
		require.ErrorIs(t, err, models.ErrTemplateNotFound)
		_, err = builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalTypePredefined, TemplateID: template.ID, Amount: amount(1)})
		require.ErrorIs(t, err, models.ErrTemplateNotApplicable)

		require.NoError(t, tx.Model(&dbmodels.ApprovalTemplate{}).Where("id = ?", template.ID).Update("is_active", false).Error)
		_, err = builder.Build(ctx, ChainRequest{ApprovalType: models.ApprovalTypePredefined, TemplateID: template.ID, CreatorID: creator, Amount: amount(500)})
		require.ErrorIs(t, err, models.ErrTemplateNotFound)
	})
}
