package repositories

import (
	"strings"
	"time"

	"freight-app/models"
	"freight-app/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GoodsRepository struct {
	db *gorm.DB
}

func NewGoodsRepository(db *gorm.DB) *GoodsRepository {
	return &GoodsRepository{db}
}

type UnmatchedGroup struct {
	ShippingMark   string          `json:"shipping_mark"`
	NormalizedMark string          `json:"normalized_mark"`
	ItemCount      int             `json:"item_count"`
	TotalQuantity  int             `json:"total_quantity"`
	TotalCbm       decimal.Decimal `json:"total_cbm"`
	TotalWeight    decimal.Decimal `json:"total_weight"`
	Containers     int             `json:"containers"`
	FirstSeen      string          `json:"first_seen"`
	LastSeen       string          `json:"last_seen"`
}

// GetUnmatchedGroups folds all unmatched items into one row per shipping
// mark, newest activity first, optionally fenced to one container. Raw SQL
// bypasses the soft delete scope, so the deleted_at filter is spelled out.
func (r *GoodsRepository) GetUnmatchedGroups(containerID *uint) ([]UnmatchedGroup, error) {
	sqlGroups := `select a.normalized_mark, min(a.shipping_mark) as shipping_mark,
	count(*) as item_count, sum(a.quantity) as total_quantity,
	coalesce(sum(a.cbm), 0) as total_cbm, coalesce(sum(a.weight_kg), 0) as total_weight,
	count(distinct a.container_id) as containers,
	min(a.created_at) as first_seen, max(a.created_at) as last_seen
	from warehouse_items a
	where a.match_status = 'unmatched' and a.deleted_at is null
	`
	args := []interface{}{}
	if containerID != nil {
		sqlGroups += ` and a.container_id = ?`
		args = append(args, *containerID)
	}
	sqlGroups += `
	group by a.normalized_mark
	order by max(a.created_at) desc
	`

	var groups []UnmatchedGroup

	if err := r.db.Raw(sqlGroups, args...).Scan(&groups).Error; err != nil {
		return nil, err
	}

	return groups, nil
}

// GetUnmatchedItems lists the raw items behind one group.
func (r *GoodsRepository) GetUnmatchedItems(normalizedMark string, containerID *uint) ([]models.WarehouseItem, error) {
	query := r.db.Where("normalized_mark = ? AND match_status = ?", normalizedMark, models.MatchStatusUnmatched)
	if containerID != nil {
		query = query.Where("container_id = ?", *containerID)
	}

	var items []models.WarehouseItem
	if err := query.Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

type UnmatchedStats struct {
	GroupCount int64
	ItemCount  int64
	Oldest     *time.Time
}

// GetUnmatchedStats counts the unmatched backlog that has been sitting since
// before the cutoff. It feeds the ops digest email.
func (r *GoodsRepository) GetUnmatchedStats(before time.Time) (UnmatchedStats, error) {
	var stats UnmatchedStats

	sqlStats := `select count(distinct normalized_mark) as group_count, count(*) as item_count
	from warehouse_items
	where match_status = 'unmatched' and deleted_at is null and created_at < ?
	`

	var row struct {
		GroupCount int64
		ItemCount  int64
	}
	if err := r.db.Raw(sqlStats, before).Scan(&row).Error; err != nil {
		return stats, err
	}
	stats.GroupCount = row.GroupCount
	stats.ItemCount = row.ItemCount

	var oldest models.WarehouseItem
	if err := r.db.Where("match_status = ? AND created_at < ?", models.MatchStatusUnmatched, before).
		Order("created_at asc").First(&oldest).Error; err == nil {
		t := oldest.CreatedAt
		stats.Oldest = &t
	}

	return stats, nil
}

type DashboardSummary struct {
	Customers        int64 `json:"customers"`
	ActiveContainers int64 `json:"active_containers"`
	ItemsInChina     int64 `json:"items_in_china"`
	ItemsInTransit   int64 `json:"items_in_transit"`
	ItemsInGhana     int64 `json:"items_in_ghana"`
	UnmatchedItems   int64 `json:"unmatched_items"`
	OpenTasks        int64 `json:"open_tasks"`
}

// GetDashboardSummary collects the headline counters in one round trip.
func (r *GoodsRepository) GetDashboardSummary() (DashboardSummary, error) {
	sqlSummary := `select
	(select count(*) from customers where deleted_at is null) as customers,
	(select count(*) from cargo_containers where deleted_at is null and status <> 'unloaded') as active_containers,
	(select count(*) from warehouse_items where deleted_at is null and location = 'china' and status in ('in_warehouse', 'loaded')) as items_in_china,
	(select count(*) from warehouse_items where deleted_at is null and status = 'in_transit') as items_in_transit,
	(select count(*) from warehouse_items where deleted_at is null and location = 'ghana' and status <> 'delivered') as items_in_ghana,
	(select count(*) from warehouse_items where deleted_at is null and match_status = 'unmatched') as unmatched_items,
	(select count(*) from import_tasks where status in ('pending', 'processing')) as open_tasks
	`

	var summary DashboardSummary
	if err := r.db.Raw(sqlSummary).Scan(&summary).Error; err != nil {
		return summary, err
	}
	return summary, nil
}

type TrackedItem struct {
	TrackingNo      string `json:"tracking_no"`
	Description     string `json:"description,omitempty"`
	Quantity        int    `json:"quantity"`
	Status          string `json:"status"`
	Location        string `json:"location"`
	ContainerNo     string `json:"container_no,omitempty"`
	ContainerStatus string `json:"container_status,omitempty"`
	Eta             string `json:"eta,omitempty"`
	ArrivedDate     string `json:"arrived_date,omitempty"`
}

type TrackingInfo struct {
	Kind            string        `json:"kind"`
	TrackingNo      string        `json:"tracking_no,omitempty"`
	ShippingMark    string        `json:"shipping_mark,omitempty"`
	Description     string        `json:"description,omitempty"`
	Quantity        int           `json:"quantity,omitempty"`
	Status          string        `json:"status,omitempty"`
	Location        string        `json:"location,omitempty"`
	CargoType       string        `json:"cargo_type,omitempty"`
	ContainerNo     string        `json:"container_no,omitempty"`
	ContainerStatus string        `json:"container_status,omitempty"`
	Eta             string        `json:"eta,omitempty"`
	ArrivedDate     string        `json:"arrived_date,omitempty"`
	ItemCount       int64         `json:"item_count,omitempty"`
	Items           []TrackedItem `json:"items,omitempty"`
}

const trackMarkLimit = 20

// TrackByReference answers the public tracking lookup. The reference is
// tried as a tracking number, then a shipping mark, then a container number.
// Names, phones and emails never leave this query.
func (r *GoodsRepository) TrackByReference(ref string) (*TrackingInfo, error) {
	ref = strings.TrimSpace(ref)
	upper := strings.ToUpper(ref)

	var item models.WarehouseItem
	err := r.db.Where("upper(tracking_no) = ?", upper).First(&item).Error
	if err == nil {
		info := &TrackingInfo{
			Kind:        "item",
			TrackingNo:  item.TrackingNo,
			Description: item.Description,
			Quantity:    item.Quantity,
			Status:      item.Status,
			Location:    item.Location,
			CargoType:   item.CargoType,
		}
		if item.ContainerID != nil {
			var container models.CargoContainer
			if cerr := r.db.First(&container, *item.ContainerID).Error; cerr == nil {
				fillContainerInfo(info, &container)
			}
		}
		return info, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if info, err := r.trackByMark(ref); err == nil {
		return info, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var container models.CargoContainer
	if err := r.db.Where("upper(container_no) = ?", upper).First(&container).Error; err != nil {
		return nil, err
	}

	info := &TrackingInfo{
		Kind:      "container",
		Status:    container.Status,
		CargoType: container.CargoType,
	}
	fillContainerInfo(info, &container)
	r.db.Model(&models.WarehouseItem{}).
		Where("container_id = ?", container.ID).
		Count(&info.ItemCount)

	return info, nil
}

// trackByMark summarizes every recent package under a shipping mark, the way
// a customer quotes it over the phone.
func (r *GoodsRepository) trackByMark(ref string) (*TrackingInfo, error) {
	norm := utils.NormalizeMark(ref)
	if norm == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var items []models.WarehouseItem
	if err := r.db.Where("normalized_mark = ?", norm).
		Order("created_at desc").Limit(trackMarkLimit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	info := &TrackingInfo{
		Kind:         "mark",
		ShippingMark: items[0].ShippingMark,
		ItemCount:    int64(len(items)),
	}

	containers := map[uint]*models.CargoContainer{}
	for i := range items {
		it := &items[i]
		line := TrackedItem{
			TrackingNo:  it.TrackingNo,
			Description: it.Description,
			Quantity:    it.Quantity,
			Status:      it.Status,
			Location:    it.Location,
		}
		if it.ContainerID != nil {
			container, seen := containers[*it.ContainerID]
			if !seen {
				var c models.CargoContainer
				if cerr := r.db.First(&c, *it.ContainerID).Error; cerr == nil {
					container = &c
				}
				containers[*it.ContainerID] = container
			}
			if container != nil {
				line.ContainerNo = container.ContainerNo
				line.ContainerStatus = container.Status
				if container.Eta != nil {
					line.Eta = container.Eta.Format("2006-01-02")
				}
				if container.ArrivedDate != nil {
					line.ArrivedDate = container.ArrivedDate.Format("2006-01-02")
				}
			}
		}
		info.Items = append(info.Items, line)
	}

	return info, nil
}

func fillContainerInfo(info *TrackingInfo, container *models.CargoContainer) {
	info.ContainerNo = container.ContainerNo
	info.ContainerStatus = container.Status
	if container.Eta != nil {
		info.Eta = container.Eta.Format("2006-01-02")
	}
	if container.ArrivedDate != nil {
		info.ArrivedDate = container.ArrivedDate.Format("2006-01-02")
	}
}
