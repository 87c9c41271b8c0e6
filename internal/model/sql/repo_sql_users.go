package sql

import (
	"closet/internal/entity"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// normalizeEmail 邮箱统一按小写存取，唯一索引因此对大小写不敏感
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser 写入新账号；邮箱冲突时返回 gorm.ErrDuplicatedKey
func (r *GormRepository) CreateUser(ctx context.Context, user *entity.DbUser) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	user.Email = normalizeEmail(user.Email)
	if user.Email == "" {
		return fmt.Errorf("email is empty")
	}
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateUser 修改资料或密码哈希，账号不存在时返回 gorm.ErrRecordNotFound
func (r *GormRepository) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid user id")
	}
	if updates.DisplayName != nil {
		name := strings.TrimSpace(*updates.DisplayName)
		updates.DisplayName = &name
	}
	if updates.IsEmpty() {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&entity.DbUser{}).Where("id = ?", id).Updates(updates.ToMap())
	switch {
	case result.Error != nil:
		return result.Error
	case result.RowsAffected == 0:
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetUserByEmail 按邮箱查找账号
func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return r.firstUser(ctx, "email = ?", normalized)
}

// GetUserByID 按主键查找账号
func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.firstUser(ctx, "id = ?", id)
}

func (r *GormRepository) firstUser(ctx context.Context, cond string, arg interface{}) (*entity.DbUser, error) {
	var user entity.DbUser
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CountUsers 统计账号数量，注册策略依赖它判断是否为首个用户
func (r *GormRepository) CountUsers(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.DbUser{}).Count(&count).Error
	return count, err
}
