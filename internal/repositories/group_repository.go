package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"epicmail-service/internal/models"
)

var (
	ErrGroupNotFound   = errors.New("group not found")
	ErrDuplicateMember = errors.New("user is already a group member")
)

// OwnerRole is the membership role given to a group's creator.
const OwnerRole = "owner"

// GroupRepository abstracts group and membership persistence.
type GroupRepository interface {
	CreateGroup(ctx context.Context, ownerID int, name, role string) (models.Group, error)
	GetGroup(ctx context.Context, groupID int) (models.Group, error)
	ListGroupsForUser(ctx context.Context, userID int) ([]models.Group, error)
	RenameGroup(ctx context.Context, groupID int, newName string) error
	DeleteGroup(ctx context.Context, groupID int) error
	AddMember(ctx context.Context, groupID, userID int, userRole string) (models.GroupMember, error)
	IsMember(ctx context.Context, groupID, userID int) (bool, error)
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// CreateGroup creates a group and the owner's membership row atomically.
func (r *GroupRepo) CreateGroup(ctx context.Context, ownerID int, name, role string) (models.Group, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Group{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var group models.Group
	if err = tx.QueryRowxContext(ctx, `INSERT INTO groups (owner_id, name, role) VALUES ($1, $2, $3) RETURNING id, owner_id, name, role`, ownerID, name, role).
		StructScan(&group); err != nil {
		return models.Group{}, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id, user_role) VALUES ($1, $2, $3)`, group.ID, ownerID, OwnerRole); err != nil {
		return models.Group{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Group{}, err
	}
	return group, nil
}

// GetGroup fetches a single group.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT id, owner_id, name, role FROM groups WHERE id=$1`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// ListGroupsForUser returns groups that include the user. Empty results are
// an empty slice, never nil, so they serialize as [].
func (r *GroupRepo) ListGroupsForUser(ctx context.Context, userID int) ([]models.Group, error) {
	groups := []models.Group{}
	err := r.db.SelectContext(ctx, &groups, `SELECT g.id, g.owner_id, g.name, g.role FROM groups g INNER JOIN group_members gm ON gm.group_id = g.id WHERE gm.user_id=$1 ORDER BY g.id`, userID)
	return groups, err
}

// RenameGroup persists a new group name.
func (r *GroupRepo) RenameGroup(ctx context.Context, groupID int, newName string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE groups SET name=$1 WHERE id=$2`, newName, groupID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// DeleteGroup removes the group. Members and group messages go with it via
// the FK cascade rules.
func (r *GroupRepo) DeleteGroup(ctx context.Context, groupID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id=$1`, groupID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// AddMember adds a user to a group. The unique index on (group_id, user_id)
// surfaces duplicates as ErrDuplicateMember.
func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID int, userRole string) (models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.QueryRowxContext(ctx, `INSERT INTO group_members (group_id, user_id, user_role) VALUES ($1, $2, $3) RETURNING id, group_id, user_id, user_role`, groupID, userID, userRole).
		StructScan(&member)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return models.GroupMember{}, ErrDuplicateMember
		}
		return models.GroupMember{}, err
	}
	return member, nil
}

// IsMember checks membership.
func (r *GroupRepo) IsMember(ctx context.Context, groupID, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id=$1 AND user_id=$2)`, groupID, userID)
	return exists, err
}
