package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const (
	codeLength   = 6
	codeAttempts = 5
)

// CreateGroup persists a new group, generating a unique join code.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	explicitCode := group.Code != ""
	for attempt := 0; attempt < codeAttempts; attempt++ {
		if !explicitCode {
			group.Code = generateCode()
		}
		group.Code = strings.ToUpper(group.Code)

		_, err := s.db.ExecContext(ctx,
			"INSERT INTO groups (id, name, code, created_at) VALUES (?, ?, ?, ?)",
			group.ID, group.Name, group.Code, group.CreatedAt,
		)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		if explicitCode {
			return fmt.Errorf("group code %s: %w", group.Code, storage.ErrDuplicate)
		}
	}

	return fmt.Errorf("failed to generate a unique group code after %d attempts", codeAttempts)
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.getGroup(ctx, "SELECT id, name, code, created_at FROM groups WHERE id = ?", groupID)
}

// GetGroupByCode retrieves a group by its join code, case-insensitively.
func (s *SQLiteStore) GetGroupByCode(ctx context.Context, code string) (*models.Group, error) {
	return s.getGroup(ctx, "SELECT id, name, code, created_at FROM groups WHERE code = ?", strings.ToUpper(code))
}

func (s *SQLiteStore) getGroup(ctx context.Context, query, arg string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&group.ID, &group.Name, &group.Code, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("group %s: %w", arg, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// RenameGroup changes a group's display name.
func (s *SQLiteStore) RenameGroup(ctx context.Context, groupID, name string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE groups SET name = ? WHERE id = ?", name, groupID)
	if err != nil {
		return fmt.Errorf("failed to rename group: %w", err)
	}
	return requireAffected(res, "group", groupID)
}

// AddMember adds a member to an existing group.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	if err := groupExists(ctx, s.db, member.GroupID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO members (id, group_id, name, created_at) VALUES (?, ?, ?, ?)",
		member.ID, member.GroupID, member.Name, member.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("member %q: %w", member.Name, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	member := &models.Member{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, name, created_at FROM members WHERE id = ?",
		memberID,
	).Scan(&member.ID, &member.GroupID, &member.Name, &member.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// ListMembers returns the group's members ordered by name.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	return listMembers(ctx, s.db, groupID)
}

func listMembers(ctx context.Context, q querier, groupID string) ([]*models.Member, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, group_id, name, created_at FROM members WHERE group_id = ? ORDER BY name, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		if err := rows.Scan(&member.ID, &member.GroupID, &member.Name, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// RenameMember changes a member's display name.
func (s *SQLiteStore) RenameMember(ctx context.Context, memberID, name string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE members SET name = ? WHERE id = ?", name, memberID)
	if isUniqueViolation(err) {
		return fmt.Errorf("member %q: %w", name, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to rename member: %w", err)
	}
	return requireAffected(res, "member", memberID)
}

// RemoveMember deletes a member that neither pays an expense nor owns a split.
func (s *SQLiteStore) RemoveMember(ctx context.Context, memberID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var inUse int
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM expenses WHERE paid_by = ?)
		     OR EXISTS (SELECT 1 FROM expense_splits WHERE member_id = ?)`,
		memberID, memberID,
	).Scan(&inUse)
	if err != nil {
		return fmt.Errorf("failed to check member references: %w", err)
	}
	if inUse != 0 {
		return fmt.Errorf("member %s: %w", memberID, storage.ErrMemberInUse)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM members WHERE id = ?", memberID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if err := requireAffected(res, "member", memberID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// generateCode returns a random uppercase join code.
func generateCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:codeLength])
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
