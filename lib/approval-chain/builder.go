package approvalchain

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	approvaltemplatestore "task-approval-backend/lib/approval-template/store"
	userstore "task-approval-backend/lib/users/store"
	"task-approval-backend/lib/utils/helpers"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/models"
	dbmodels "task-approval-backend/models/db"
)

// ChainRequest carries the task attributes the chain depends on.
type ChainRequest struct {
	ApprovalType models.ApprovalType
	CreatorID    string
	AssigneeID   string
	DepartmentID string
	Amount       *float64
	ApproverIDs  []string // specific: ordered approvers
	PeerIDs      []string // 360: explicit peer set, department peers when empty
	TemplateID   string   // predefined
}

type ChainLink struct {
	LevelOrder     int
	ApproverUserID string
}

type Provider interface {
	Build(ctx context.Context, request ChainRequest) ([]ChainLink, error)
}

func NewInstance(tx *gorm.DB) Provider {
	instance := impl{
		userStore:     userstore.NewInstance(tx),
		templateStore: approvaltemplatestore.NewInstance(tx),
	}
	initchecker.CheckInit(
		"userStore", instance.userStore,
		"templateStore", instance.templateStore,
	)
	return instance
}

type impl struct {
	userStore     userstore.Provider
	templateStore approvaltemplatestore.Provider
}

func (i impl) Build(ctx context.Context, request ChainRequest) ([]ChainLink, error) {
	if helpers.IsContextDone(ctx) {
		return nil, errors.Wrap(ctx.Err(), "chain build cancelled")
	}
	logger := log.WithField("approval_type", request.ApprovalType).
		WithField("creator_id", request.CreatorID)
	var (
		chain []ChainLink
		err   error
	)
	switch request.ApprovalType {
	case models.ApprovalTypeNone, "":
		return []ChainLink{}, nil
	case models.ApprovalTypeSpecific:
		chain, err = i.buildSpecific(request)
	case models.ApprovalType360:
		chain, err = i.build360(request)
	case models.ApprovalTypePredefined:
		chain, err = i.buildPredefined(request)
	default:
		return nil, errors.Wrapf(models.ErrValidation, "unknown approval type %q", request.ApprovalType)
	}
	if err != nil {
		logger.WithError(err).Warn("approval chain not built")
		return nil, err
	}
	logger.WithField("links", len(chain)).Debug("approval chain built")
	return chain, nil
}

func (i impl) buildSpecific(request ChainRequest) ([]ChainLink, error) {
	if len(request.ApproverIDs) == 0 {
		return nil, errors.Wrap(models.ErrEmptyChain, "no approvers given")
	}
	seen := map[string]bool{}
	chain := make([]ChainLink, 0, len(request.ApproverIDs))
	for idx, userID := range request.ApproverIDs {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			return nil, errors.Wrapf(models.ErrValidation, "approver %v is empty", idx+1)
		}
		if seen[userID] {
			return nil, errors.Wrapf(models.ErrValidation, "approver %s is listed twice", userID)
		}
		seen[userID] = true
		if _, err := i.activeUser(userID); err != nil {
			return nil, err
		}
		chain = append(chain, ChainLink{LevelOrder: idx + 1, ApproverUserID: userID})
	}
	return chain, nil
}

// build360 puts every peer at level 1, the stage passes only when all of them approve.
func (i impl) build360(request ChainRequest) ([]ChainLink, error) {
	var peers []string
	if len(request.PeerIDs) > 0 {
		for _, userID := range helpers.Unique(request.PeerIDs) {
			if _, err := i.activeUser(userID); err != nil {
				return nil, err
			}
			peers = append(peers, userID)
		}
	} else if request.DepartmentID != "" {
		users, err := i.userStore.ActiveByDepartment(request.DepartmentID)
		if err != nil {
			return nil, err
		}
		for _, user := range users {
			if user.ID == request.CreatorID || user.ID == request.AssigneeID {
				continue
			}
			peers = append(peers, user.ID)
		}
	}
	if len(peers) == 0 {
		return nil, errors.Wrap(models.ErrNoPeersFound, "no active peers for 360 approval")
	}
	chain := make([]ChainLink, 0, len(peers))
	for _, userID := range peers {
		chain = append(chain, ChainLink{LevelOrder: 1, ApproverUserID: userID})
	}
	return chain, nil
}

func (i impl) buildPredefined(request ChainRequest) ([]ChainLink, error) {
	if request.TemplateID == "" {
		return nil, errors.Wrap(models.ErrTemplateNotFound, "template is not set")
	}
	template, err := i.templateStore.GetByID(request.TemplateID)
	if err != nil {
		return nil, err
	}
	if template == nil || !template.IsActive {
		return nil, errors.Wrapf(models.ErrTemplateNotFound, "template %s", request.TemplateID)
	}
	cond, err := models.ParseApprovalCondition(template.Condition)
	if err != nil {
		return nil, err
	}
	if !cond.Matches(request.Amount, request.DepartmentID) {
		return nil, errors.Wrapf(models.ErrTemplateNotApplicable, "template %s", template.Name)
	}
	chain := []ChainLink{}
	for _, stage := range template.Stages {
		stageCond, err := models.ParseApprovalCondition(stage.Condition)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %v", stage.LevelOrder)
		}
		if !stageCond.Matches(request.Amount, request.DepartmentID) {
			continue
		}
		userID, err := i.resolveStage(stage, request)
		if err != nil {
			return nil, errors.Wrapf(err, "stage %v", stage.LevelOrder)
		}
		chain = append(chain, ChainLink{LevelOrder: len(chain) + 1, ApproverUserID: userID})
	}
	return chain, nil
}

func (i impl) resolveStage(stage dbmodels.ApprovalTemplateStage, request ChainRequest) (string, error) {
	switch stage.ApproverType {
	case models.ApproverTypeUser:
		user, err := i.activeUser(stage.ApproverValue)
		if err != nil {
			return "", err
		}
		return user.ID, nil
	case models.ApproverTypeRole:
		return i.resolveRole(stage.ApproverValue, request.DepartmentID)
	case models.ApproverTypeDynamicRole:
		return i.resolveDynamicRole(models.DynamicRole(stage.ApproverValue), request)
	}
	return "", errors.Wrapf(models.ErrUnresolvableApprover, "unknown approver type %q", stage.ApproverType)
}

// resolveRole picks one active holder, preferring the task's department.
func (i impl) resolveRole(role, departmentID string) (string, error) {
	holders, err := i.userStore.ActiveByRole(strings.ToUpper(role))
	if err != nil {
		return "", err
	}
	if len(holders) == 0 {
		return "", errors.Wrapf(models.ErrUnresolvableApprover, "role %s has no active holders", role)
	}
	for _, holder := range holders {
		if holder.InDepartment(departmentID) {
			return holder.ID, nil
		}
	}
	return holders[0].ID, nil
}

func (i impl) resolveDynamicRole(role models.DynamicRole, request ChainRequest) (string, error) {
	var (
		manager *dbmodels.User
		err     error
	)
	switch role {
	case models.DynamicRoleCreatorManager:
		creator, cErr := i.userStore.GetByID(request.CreatorID)
		if cErr != nil {
			return "", cErr
		}
		if creator != nil && creator.DepartmentID != nil {
			manager, err = i.userStore.DepartmentManager(*creator.DepartmentID, creator.ID)
		}
	case models.DynamicRoleDepartmentManager:
		manager, err = i.userStore.DepartmentManager(request.DepartmentID)
	case models.DynamicRoleParentDepartmentManager:
		parentID, pErr := i.userStore.DepartmentParentID(request.DepartmentID)
		if pErr != nil {
			return "", pErr
		}
		manager, err = i.userStore.DepartmentManager(parentID)
	default:
		return "", errors.Wrapf(models.ErrUnresolvableApprover, "unknown dynamic role %q", role)
	}
	if err != nil {
		return "", err
	}
	if manager == nil {
		return "", errors.Wrapf(models.ErrUnresolvableApprover, "%s not found", role)
	}
	return manager.ID, nil
}

func (i impl) activeUser(userID string) (*dbmodels.User, error) {
	user, err := i.userStore.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "user %s", userID)
	}
	if !user.IsActive {
		return nil, errors.Wrapf(models.ErrUnresolvableApprover, "user %s is not active", userID)
	}
	return user, nil
}
