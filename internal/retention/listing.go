package retention

import (
	"context"
	"strings"
	"time"

	"butce-backend/internal/apperror"

	"gorm.io/gorm"
)

type AssignmentFilter struct {
	Search   string
	MemberID uint
	Limit    int
	Offset   int
}

type CandidateFilter struct {
	Search         string
	UnassignedOnly bool
	Limit          int
	Offset         int
}

// Candidate: en az bir işlemi olan müşteri
type Candidate struct {
	ID               uint    `json:"id"`
	CustomerCode     string  `json:"customer_code"`
	Name             string  `json:"name"`
	Phone            *string `json:"phone"`
	Email            *string `json:"email"`
	SalespersonName  *string `json:"salesperson_name"`
	TransactionCount int64   `json:"transaction_count"`
	AlreadyAssigned  bool    `json:"already_assigned"`
	RetMemberID      *uint   `json:"ret_member_id"`
	RetMemberName    *string `json:"ret_member_name"`
}

type MemberOption struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}

type MemberSummary struct {
	RetMemberID   uint   `json:"ret_member_id"`
	FullName      string `json:"full_name"`
	AssignedCount int64  `json:"assigned_count"`
}

// AssignableCustomer: gm_assignable_customers view satırı
type AssignableCustomer struct {
	ID              uint      `json:"id"`
	CustomerCode    string    `json:"customer_code"`
	Name            string    `json:"name"`
	Phone           *string   `json:"phone"`
	Email           *string   `json:"email"`
	SalespersonName *string   `json:"salesperson_name"`
	SalespersonCode *string   `json:"salesperson_code"`
	CreatedAt       time.Time `json:"created_at"`
}

// Listings atama ekranlarının salt okunur sorguları
type Listings struct {
	db *gorm.DB
}

func NewListings(db *gorm.DB) *Listings {
	return &Listings{db: db}
}

func (l *Listings) Assignments(ctx context.Context, f AssignmentFilter) ([]Assignment, error) {
	dbq := assignmentQuery(l.db.WithContext(ctx))
	if strings.TrimSpace(f.Search) != "" {
		like := likePattern(f.Search)
		dbq = dbq.Where("(c.name LIKE ? OR c.customer_code LIKE ? OR rm.full_name LIKE ?)", like, like, like)
	}
	if f.MemberID > 0 {
		dbq = dbq.Where("a.ret_member_id = ?", f.MemberID)
	}

	out := []Assignment{}
	if err := dbq.Order("a.id DESC").Limit(f.Limit).Offset(f.Offset).Scan(&out).Error; err != nil {
		return nil, apperror.Internal("Atamalar listelenemedi", err)
	}
	return out, nil
}

func (l *Listings) Candidates(ctx context.Context, f CandidateFilter) ([]Candidate, error) {
	dbq := l.db.WithContext(ctx).
		Table("customers AS c").
		Select(`c.id, c.customer_code, c.name, c.phone, c.email,
			sp.name AS salesperson_name,
			(SELECT COUNT(*) FROM transactions t WHERE t.customer_id = c.id) AS transaction_count,
			CASE WHEN a.id IS NULL THEN 0 ELSE 1 END AS already_assigned,
			a.ret_member_id, rm.full_name AS ret_member_name`).
		Joins("LEFT JOIN salespersons sp ON sp.id = c.salesperson_id").
		Joins("LEFT JOIN ret_assignments a ON a.customer_id = c.id").
		Joins("LEFT JOIN ret_members rm ON rm.id = a.ret_member_id").
		Where("EXISTS (SELECT 1 FROM transactions t WHERE t.customer_id = c.id)")
	if f.UnassignedOnly {
		dbq = dbq.Where("a.id IS NULL")
	}
	if strings.TrimSpace(f.Search) != "" {
		like := likePattern(f.Search)
		dbq = dbq.Where("(c.name LIKE ? OR c.customer_code LIKE ? OR c.phone LIKE ?)", like, like, like)
	}

	out := []Candidate{}
	if err := dbq.Order("c.id DESC").Limit(f.Limit).Offset(f.Offset).Scan(&out).Error; err != nil {
		return nil, apperror.Internal("Aday müşteriler listelenemedi", err)
	}
	return out, nil
}

// ActiveMembers üye seçim listesi için
func (l *Listings) ActiveMembers(ctx context.Context) ([]MemberOption, error) {
	out := []MemberOption{}
	err := l.db.WithContext(ctx).Table("ret_members").
		Select("id, full_name").
		Where("active = ?", true).
		Order("full_name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, apperror.Internal("RET üyeleri listelenemedi", err)
	}
	return out, nil
}

// Summary aktif üye başına atanmış müşteri sayısı
func (l *Listings) Summary(ctx context.Context) ([]MemberSummary, error) {
	out := []MemberSummary{}
	err := l.db.WithContext(ctx).Table("ret_members AS rm").
		Select("rm.id AS ret_member_id, rm.full_name, COUNT(a.id) AS assigned_count").
		Joins("LEFT JOIN ret_assignments a ON a.ret_member_id = rm.id").
		Where("rm.active = ?", true).
		Group("rm.id, rm.full_name").
		Order("assigned_count DESC, rm.full_name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, apperror.Internal("Atama özeti alınamadı", err)
	}
	return out, nil
}

func (l *Listings) Assignable(ctx context.Context, limit, offset int) ([]AssignableCustomer, error) {
	out := []AssignableCustomer{}
	err := l.db.WithContext(ctx).Table("gm_assignable_customers").
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Scan(&out).Error
	if err != nil {
		return nil, apperror.Internal("Atanabilir müşteriler listelenemedi", err)
	}
	return out, nil
}
