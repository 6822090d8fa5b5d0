package services

import (
	"errors"
	"strings"

	"freight-app/models"
	"freight-app/utils"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Actions accepted when resolving an unmatched shipping mark group.
const (
	ResolveAssign = "assign"
	ResolveCreate = "create"
	ResolveSkip   = "skip"
)

var (
	ErrNoUnmatchedItems = errors.New("no unmatched items for this shipping mark")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrMarkTaken        = errors.New("shipping mark already registered")
	ErrUnknownAction    = errors.New("unknown resolve action")
)

type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

type Suggestion struct {
	CustomerID   uint   `json:"customer_id"`
	ShippingMark string `json:"shipping_mark"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Score        int    `json:"score"`
}

const maxSuggestions = 5

// Suggestion scores. Exact normalized match outranks a shared base mark,
// which outranks a prefix overlap, which outranks only sharing the leading
// name token.
const (
	scoreExact       = 100
	scoreBase        = 85
	scorePrefix      = 70
	scoreSharedToken = 55
)

// SuggestCustomers ranks registered customers against a shipping mark from
// an unmatched group. At most five come back, best first.
func (s *MatchService) SuggestCustomers(mark string) ([]Suggestion, error) {
	norm := utils.NormalizeMark(mark)
	if norm == "" {
		return nil, nil
	}
	base := utils.BaseMark(mark)

	var customers []models.Customer
	if err := s.DB.Where("is_active = ?", true).Find(&customers).Error; err != nil {
		return nil, err
	}

	out := []Suggestion{}
	for i := range customers {
		c := &customers[i]
		score := scoreMarks(norm, base, c.NormalizedMark, utils.BaseMark(c.NormalizedMark))
		if score == 0 {
			continue
		}
		out = append(out, Suggestion{
			CustomerID:   c.ID,
			ShippingMark: c.ShippingMark,
			Name:         c.Name,
			Phone:        c.Phone,
			Score:        score,
		})
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		if a.Name != b.Name {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.ShippingMark, b.ShippingMark)
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out, nil
}

func scoreMarks(norm, base, custNorm, custBase string) int {
	if custNorm == norm {
		return scoreExact
	}
	if base != "" && custBase == base {
		return scoreBase
	}
	// Prefix in either direction, but only on marks long enough to mean
	// something. "K" would prefix half the register.
	if len(norm) >= 3 && len(custNorm) >= 3 &&
		(strings.HasPrefix(custNorm, norm) || strings.HasPrefix(norm, custNorm)) {
		return scorePrefix
	}
	if t := firstToken(base); len(t) >= 3 && t == firstToken(custBase) {
		return scoreSharedToken
	}
	return 0
}

func firstToken(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// NewCustomerInput carries the fields for a customer created while resolving
// a group. An empty shipping mark defaults to the group's own mark.
type NewCustomerInput struct {
	ShippingMark string `json:"shipping_mark"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AltPhone     string `json:"alt_phone"`
	Email        string `json:"email"`
	City         string `json:"city"`
	Notes        string `json:"notes"`
}

type ResolveRequest struct {
	Action       string            `json:"action" validate:"required,oneof=assign create skip"`
	ShippingMark string            `json:"shipping_mark" validate:"required"`
	CustomerID   uint              `json:"customer_id"`
	ContainerID  *uint             `json:"container_id"`
	NewCustomer  *NewCustomerInput `json:"new_customer"`
}

// pendingItems builds the query for the unmatched items a resolve request
// targets, optionally fenced to one container.
func pendingItems(tx *gorm.DB, norm string, containerID *uint) *gorm.DB {
	q := tx.Model(&models.WarehouseItem{}).
		Where("normalized_mark = ? AND match_status = ?", norm, models.MatchStatusUnmatched)
	if containerID != nil {
		q = q.Where("container_id = ?", *containerID)
	}
	return q
}

// ResolveGroup applies one action to every unmatched item carrying the given
// shipping mark, in a single transaction. It returns how many items were
// touched and, for create, the new customer.
func (s *MatchService) ResolveGroup(req *ResolveRequest, userID int) (int, *models.Customer, error) {
	norm := utils.NormalizeMark(req.ShippingMark)

	tx := s.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	var pending int64
	if err := pendingItems(tx, norm, req.ContainerID).Count(&pending).Error; err != nil {
		tx.Rollback()
		return 0, nil, err
	}
	if pending == 0 {
		tx.Rollback()
		return 0, nil, ErrNoUnmatchedItems
	}

	var customer *models.Customer
	updates := map[string]interface{}{"updated_by": userID}

	switch req.Action {
	case ResolveAssign:
		var existing models.Customer
		if err := tx.First(&existing, req.CustomerID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil, ErrCustomerNotFound
			}
			return 0, nil, err
		}
		customer = &existing
		updates["customer_id"] = existing.ID
		updates["match_status"] = models.MatchStatusMatched

	case ResolveCreate:
		input := req.NewCustomer
		if input == nil {
			input = &NewCustomerInput{}
		}
		mark := input.ShippingMark
		if mark == "" {
			mark = req.ShippingMark
		}

		var existing models.Customer
		if err := tx.Where("normalized_mark = ?", utils.NormalizeMark(mark)).First(&existing).Error; err == nil {
			tx.Rollback()
			return 0, nil, ErrMarkTaken
		}

		created := models.Customer{
			ShippingMark: mark,
			Name:         input.Name,
			Phone:        input.Phone,
			AltPhone:     input.AltPhone,
			Email:        input.Email,
			City:         input.City,
			Notes:        input.Notes,
			IsActive:     true,
			CreatedBy:    userID,
		}
		if created.Name == "" {
			created.Name = mark
		}
		if err := tx.Create(&created).Error; err != nil {
			tx.Rollback()
			return 0, nil, err
		}
		customer = &created
		updates["customer_id"] = created.ID
		updates["match_status"] = models.MatchStatusMatched

	case ResolveSkip:
		updates["match_status"] = models.MatchStatusSkipped

	default:
		tx.Rollback()
		return 0, nil, ErrUnknownAction
	}

	res := pendingItems(tx, norm, req.ContainerID).Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		return 0, nil, res.Error
	}

	if err := tx.Commit().Error; err != nil {
		return 0, nil, err
	}
	return int(res.RowsAffected), customer, nil
}
