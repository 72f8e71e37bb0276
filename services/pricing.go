package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/repository"
	"github.com/yeremiapane/menux-backend/utils"
)

const maxInstructionLength = 500

type OrderLineRequest struct {
	MenuItemID  *uuid.UUID `json:"menu_item_id"`
	VariantID   *uuid.UUID `json:"variant_id"`
	Quantity    *int       `json:"quantity"`
	Instruction string     `json:"instruction"`
}

type CreateOrderRequest struct {
	Slug    string             `json:"slug"`
	TableID *uuid.UUID         `json:"table_id"`
	RoomID  *uuid.UUID         `json:"room_id"`
	Items   []OrderLineRequest `json:"items"`
}

// PricedOrder is a validated order request with snapshot unit prices.
type PricedOrder struct {
	Restaurant *models.Restaurant
	Source     models.OrderSource
	Lines      []models.OrderItem
	Total      decimal.Decimal
}

// Pricer resolves and validates everything an order request references.
// It only reads.
type Pricer struct {
	restaurants *repository.RestaurantRepository
	sources     *repository.SourceRepository
	menu        *repository.MenuRepository
}

func NewPricer(restaurants *repository.RestaurantRepository, sources *repository.SourceRepository, menu *repository.MenuRepository) *Pricer {
	return &Pricer{restaurants: restaurants, sources: sources, menu: menu}
}

// OrderingRestaurant returns the active restaurant for slug, provided its
// subscription allows online orders.
func (p *Pricer) OrderingRestaurant(ctx context.Context, slug string) (*models.Restaurant, error) {
	restaurant, err := p.restaurants.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !restaurant.OnlineOrderingAllowed() {
		return nil, utils.Validation("Online ordering not enabled for this subscription")
	}
	return restaurant, nil
}

// ResolveSource checks the table or room belongs to the restaurant and is active.
func (p *Pricer) ResolveSource(ctx context.Context, restaurantID uuid.UUID, tableID, roomID *uuid.UUID) (models.OrderSource, error) {
	if tableID != nil && roomID != nil {
		return models.OrderSource{}, utils.Validation("Provide either table_id or room_id, not both")
	}
	if tableID != nil {
		table, err := p.sources.FindTable(ctx, restaurantID, *tableID)
		if err != nil {
			return models.OrderSource{}, err
		}
		if !table.Active {
			return models.OrderSource{}, utils.Validation("Table is inactive")
		}
		return models.OrderSource{TableID: &table.ID}, nil
	}
	if roomID != nil {
		room, err := p.sources.FindRoom(ctx, restaurantID, *roomID)
		if err != nil {
			return models.OrderSource{}, err
		}
		if !room.Active {
			return models.OrderSource{}, utils.Validation("Room is inactive")
		}
		return models.OrderSource{RoomID: &room.ID}, nil
	}
	return models.OrderSource{}, nil
}

func (p *Pricer) Price(ctx context.Context, req CreateOrderRequest) (*PricedOrder, error) {
	restaurant, err := p.OrderingRestaurant(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	source, err := p.ResolveSource(ctx, restaurant.ID, req.TableID, req.RoomID)
	if err != nil {
		return nil, err
	}

	if len(req.Items) == 0 {
		return nil, utils.Validation("At least one item is required")
	}
	var itemIDs, variantIDs []uuid.UUID
	for _, line := range req.Items {
		if line.MenuItemID == nil {
			return nil, utils.Validation("menu_item_id is required for all items")
		}
		itemIDs = append(itemIDs, *line.MenuItemID)
		if line.VariantID != nil {
			variantIDs = append(variantIDs, *line.VariantID)
		}
	}

	items, err := p.menu.ItemsByIDs(ctx, restaurant.ID, itemIDs)
	if err != nil {
		return nil, err
	}
	variants, err := p.menu.VariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}

	lines, total, err := priceLines(req.Items, items, variants)
	if err != nil {
		return nil, err
	}
	return &PricedOrder{Restaurant: restaurant, Source: source, Lines: lines, Total: total}, nil
}

// priceLines builds order lines with unit price = base price + variant delta
// and returns their exact sum.
func priceLines(req []OrderLineRequest, items map[uuid.UUID]models.MenuItem, variants map[uuid.UUID]models.MenuVariant) ([]models.OrderItem, decimal.Decimal, error) {
	total := decimal.Zero
	lines := make([]models.OrderItem, 0, len(req))

	for _, r := range req {
		item, ok := items[*r.MenuItemID]
		if !ok {
			return nil, total, utils.Validation("One or more items do not belong to this restaurant")
		}
		if !item.Available {
			return nil, total, utils.Validation("Menu item is unavailable: " + item.Name)
		}
		if r.Quantity == nil || *r.Quantity <= 0 {
			return nil, total, utils.Validation("Quantity must be greater than zero")
		}

		unit := item.Price
		if r.VariantID != nil {
			v, ok := variants[*r.VariantID]
			if !ok || v.MenuItemID != item.ID {
				return nil, total, utils.Validation("Invalid variant for menu item: " + item.Name)
			}
			unit = unit.Add(v.Delta())
		}
		if unit.IsNegative() {
			return nil, total, utils.Validation("Calculated item price cannot be negative: " + item.Name)
		}

		instruction := strings.TrimSpace(r.Instruction)
		if utf8.RuneCountInString(instruction) > maxInstructionLength {
			return nil, total, utils.Validation(fmt.Sprintf("Instruction must be at most %d characters", maxInstructionLength))
		}

		line := models.OrderItem{
			MenuItemID:  item.ID,
			VariantID:   r.VariantID,
			Quantity:    *r.Quantity,
			Price:       unit,
			Instruction: instruction,
		}
		total = total.Add(line.LineTotal())
		lines = append(lines, line)
	}
	return lines, total, nil
}
