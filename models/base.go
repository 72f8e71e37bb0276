package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a new uuid to an entity that does not have one yet.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (r *Restaurant) BeforeCreate(*gorm.DB) error      { assignID(&r.ID); return nil }
func (u *RestaurantUser) BeforeCreate(*gorm.DB) error  { assignID(&u.ID); return nil }
func (t *RestaurantTable) BeforeCreate(*gorm.DB) error { assignID(&t.ID); return nil }
func (r *Room) BeforeCreate(*gorm.DB) error            { assignID(&r.ID); return nil }
func (m *MenuItem) BeforeCreate(*gorm.DB) error        { assignID(&m.ID); return nil }
func (v *MenuVariant) BeforeCreate(*gorm.DB) error     { assignID(&v.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error           { assignID(&o.ID); return nil }
func (i *OrderItem) BeforeCreate(*gorm.DB) error       { assignID(&i.ID); return nil }
func (p *OrderPayment) BeforeCreate(*gorm.DB) error    { assignID(&p.ID); return nil }
func (k *KitchenTicket) BeforeCreate(*gorm.DB) error   { assignID(&k.ID); return nil }
