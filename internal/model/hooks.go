package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BeforeCreate hooks assign IDs client-side so inserts behave the same on
// databases without gen_random_uuid().

func (c *Company) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (u *AdminUser) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (m *Manager) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (b *Branch) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (w *Warehouse) BeforeCreate(*gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (l *AuditLog) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (mb *ManagerBranch) BeforeCreate(*gorm.DB) error {
	if mb.ID == uuid.Nil {
		mb.ID = uuid.New()
	}
	return nil
}

func (wb *WarehouseBranch) BeforeCreate(*gorm.DB) error {
	if wb.ID == uuid.Nil {
		wb.ID = uuid.New()
	}
	return nil
}

func (sb *SupplierBranch) BeforeCreate(*gorm.DB) error {
	if sb.ID == uuid.Nil {
		sb.ID = uuid.New()
	}
	return nil
}

func (sm *SupplierManager) BeforeCreate(*gorm.DB) error {
	if sm.ID == uuid.Nil {
		sm.ID = uuid.New()
	}
	return nil
}

func (mw *ManagerWarehouse) BeforeCreate(*gorm.DB) error {
	if mw.ID == uuid.Nil {
		mw.ID = uuid.New()
	}
	return nil
}
