package bidding

import (
	"bidhub/bizerror"
	"bidhub/domain"
	"bidhub/idgen"
	"bidhub/notification"
	"bidhub/persistence"
	"bidhub/session"
	"context"
	"errors"
	"strings"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	workUnitIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateWorkUnitFunc = CreateWorkUnit
	DetailWorkUnitFunc = DetailWorkUnit
	UpdateWorkUnitFunc = UpdateWorkUnit
	DeleteWorkUnitFunc = DeleteWorkUnit
)

func CreateWorkUnit(ctx context.Context, c *domain.WorkUnitCreation, sec *session.Context) (*domain.WorkUnit, error) {
	if sec == nil {
		return nil, bizerror.ErrUnauthenticated
	}
	if err := validateWorkUnit(c.Title, c.Description); err != nil {
		return nil, err
	}

	w := domain.WorkUnit{
		ID:          idgen.NextID(workUnitIdWorker),
		OwnerID:     sec.Identity.ID,
		Title:       strings.TrimSpace(c.Title),
		Description: c.Description,
		CreateTime:  types.CurrentTimestamp(),
	}
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Create(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// DetailWorkUnit returns the work unit with its bids that are still in the running, newest first.
func DetailWorkUnit(ctx context.Context, id types.ID) (*domain.WorkUnitDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	w, err := findWorkUnit(db, id)
	if err != nil {
		return nil, err
	}
	bids := []domain.Bid{}
	if err := db.Where("work_unit_id = ? AND status != ?", id, domain.BidStatusRejected).
		Order("create_time DESC").Order("id DESC").Find(&bids).Error; err != nil {
		return nil, err
	}
	return &domain.WorkUnitDetail{WorkUnit: *w, Bids: bids}, nil
}

func UpdateWorkUnit(ctx context.Context, id types.ID, u *domain.WorkUnitUpdating, sec *session.Context) (*domain.WorkUnit, error) {
	if err := validateWorkUnit(u.Title, u.Description); err != nil {
		return nil, err
	}

	var updated domain.WorkUnit
	err := persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := findWorkUnitAndCheckOwner(persistence.ForUpdate(tx), id, sec)
		if err != nil {
			return err
		}
		if w.Awarded {
			return bizerror.ErrWorkUnitAwarded
		}

		// mysql reports unchanged rows as not affected, the lock above guards the awarded flag
		if err := tx.Model(&domain.WorkUnit{}).Where("id = ? AND awarded = ?", id, false).
			Updates(map[string]interface{}{"title": strings.TrimSpace(u.Title), "description": u.Description}).Error; err != nil {
			return err
		}

		found, err := findWorkUnit(tx, id)
		if err != nil {
			return err
		}
		updated = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteWorkUnit removes the work unit of the caller together with its bids and their notifications.
func DeleteWorkUnit(ctx context.Context, id types.ID, sec *session.Context) error {
	return persistence.ActiveDataSourceManager.GormDB(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findWorkUnitAndCheckOwner(persistence.ForUpdate(tx), id, sec); err != nil {
			return err
		}
		if err := notification.DeleteByWorkUnit(id, tx); err != nil {
			return err
		}
		if err := tx.Delete(&domain.Bid{}, "work_unit_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.WorkUnit{}, "id = ?", id).Error
	})
}

func validateWorkUnit(title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" || len([]rune(title)) > domain.WorkUnitTitleMaxLength {
		return bizerror.ErrInvalidTitle
	}
	if len([]rune(description)) > domain.WorkUnitDescriptionMaxLength {
		return bizerror.ErrDescriptionTooLong
	}
	return nil
}

func findWorkUnit(db *gorm.DB, id types.ID) (*domain.WorkUnit, error) {
	var w domain.WorkUnit
	if err := db.Where("id = ?", id).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func findWorkUnitAndCheckOwner(db *gorm.DB, id types.ID, sec *session.Context) (*domain.WorkUnit, error) {
	w, err := findWorkUnit(db, id)
	if err != nil {
		return nil, err
	}
	if !sec.Is(w.OwnerID) && !sec.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	return w, nil
}
