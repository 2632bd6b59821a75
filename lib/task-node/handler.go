package tasknodehandler

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"task-approval-backend/db"
	tasknodestore "task-approval-backend/lib/task-node/store"
	taskstore "task-approval-backend/lib/task/store"
	initchecker "task-approval-backend/lib/utils/init-checker"
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	dbmodels "task-approval-backend/models/db"
)

type Provider interface {
	Ledger(taskID string) (taskapimodels.LedgerView, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewHandlerWithDB(db.DB)
}

func NewHandlerWithDB(tx *gorm.DB) Provider {
	instance := impl{
		store:     tasknodestore.NewInstance(tx),
		taskStore: taskstore.NewInstance(tx),
	}
	initchecker.CheckInit(
		"store", instance.store,
		"taskStore", instance.taskStore,
	)
	return instance
}

type impl struct {
	store     tasknodestore.Provider
	taskStore taskstore.Provider
}

func (i impl) Ledger(taskID string) (taskapimodels.LedgerView, error) {
	task, err := i.taskStore.GetByID(taskID)
	if err != nil {
		return taskapimodels.LedgerView{}, err
	}
	if task == nil {
		return taskapimodels.LedgerView{}, errors.Wrapf(models.ErrNotFound, "task %s", taskID)
	}
	nodes, err := i.store.ListByTask(taskID)
	if err != nil {
		return taskapimodels.LedgerView{}, err
	}
	result := taskapimodels.LedgerView{
		Nodes: make([]taskapimodels.NodeView, 0, len(nodes)),
		Path:  Path(nodes),
	}
	for _, node := range nodes {
		result.Nodes = append(result.Nodes, taskapimodels.NodeConvert(node))
	}
	return result, nil
}

// Path replays the nodes in order: the first sender followed by every receiver.
func Path(nodes []dbmodels.TaskNode) []string {
	if len(nodes) == 0 {
		return []string{}
	}
	path := make([]string, 0, len(nodes)+1)
	path = append(path, nodes[0].FromUserID)
	for _, node := range nodes {
		if path[len(path)-1] != node.FromUserID {
			// a gap means a holder changed outside the ledger, keep both ends visible
			path = append(path, node.FromUserID)
		}
		path = append(path, node.ToUserID)
	}
	return path
}
