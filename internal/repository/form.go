package repository

import (
	"github.com/linskybing/fieldreport-go/internal/domain/form"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

type FormRepo interface {
	Create(f *form.Form) error
	GetByID(id uint) (*form.Form, error)
	List(filter form.ListFilter) ([]form.Form, int64, error)
	ListByOsNumber(osNumber string) ([]form.Form, error)
	ListAll() ([]form.Form, error)
	Update(f *form.Form) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) FormRepo
}

type DBFormRepo struct {
	db *gorm.DB
}

func NewFormRepo(db *gorm.DB) *DBFormRepo {
	return &DBFormRepo{
		db: db,
	}
}

func (r *DBFormRepo) Create(f *form.Form) error {
	return r.db.Omit(clause.Associations).Create(f).Error
}

func (r *DBFormRepo) GetByID(id uint) (*form.Form, error) {
	var f form.Form
	err := r.db.Preload("User").Preload("Photos").First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *DBFormRepo) List(filter form.ListFilter) ([]form.Form, int64, error) {
	query := r.db.Model(&form.Form{})

	if filter.FormType != "" {
		query = query.Where("form_type = ?", filter.FormType)
	}
	if filter.OsNumber != "" {
		query = query.Where("os_number = ?", filter.OsNumber)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserIDs != nil {
		query = query.Where("user_id IN ?", filter.UserIDs)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	var forms []form.Form
	err := query.Preload("User").
		Order("created_at desc").
		Offset((page - 1) * size).
		Limit(size).
		Find(&forms).Error
	return forms, total, err
}

func (r *DBFormRepo) ListByOsNumber(osNumber string) ([]form.Form, error) {
	var forms []form.Form
	err := r.db.Where("os_number = ?", osNumber).Preload("User").Order("created_at asc").Find(&forms).Error
	return forms, err
}

func (r *DBFormRepo) ListAll() ([]form.Form, error) {
	var forms []form.Form
	err := r.db.Preload("Photos").Order("id asc").Find(&forms).Error
	return forms, err
}

func (r *DBFormRepo) Update(f *form.Form) error {
	return r.db.Omit(clause.Associations).Save(f).Error
}

func (r *DBFormRepo) Delete(id uint) error {
	return r.db.Delete(&form.Form{}, id).Error
}

func (r *DBFormRepo) WithTx(tx *gorm.DB) FormRepo {
	if tx == nil {
		return r
	}
	return &DBFormRepo{
		db: tx,
	}
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

type PhotoRepo interface {
	Create(p *form.Photo) error
	GetByID(id uint) (*form.Photo, error)
	ListByForm(formID uint) ([]form.Photo, error)
	Delete(id uint) error
	DeleteByForm(formID uint) error
	WithTx(tx *gorm.DB) PhotoRepo
}

type DBPhotoRepo struct {
	db *gorm.DB
}

func NewPhotoRepo(db *gorm.DB) *DBPhotoRepo {
	return &DBPhotoRepo{
		db: db,
	}
}

func (r *DBPhotoRepo) Create(p *form.Photo) error {
	return r.db.Create(p).Error
}

func (r *DBPhotoRepo) GetByID(id uint) (*form.Photo, error) {
	var p form.Photo
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *DBPhotoRepo) ListByForm(formID uint) ([]form.Photo, error) {
	var photos []form.Photo
	err := r.db.Where("form_id = ?", formID).Order("id asc").Find(&photos).Error
	return photos, err
}

func (r *DBPhotoRepo) Delete(id uint) error {
	return r.db.Delete(&form.Photo{}, id).Error
}

func (r *DBPhotoRepo) DeleteByForm(formID uint) error {
	return r.db.Where("form_id = ?", formID).Delete(&form.Photo{}).Error
}

func (r *DBPhotoRepo) WithTx(tx *gorm.DB) PhotoRepo {
	if tx == nil {
		return r
	}
	return &DBPhotoRepo{
		db: tx,
	}
}
