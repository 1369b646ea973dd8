package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"skillhub/internal/logging"
	"skillhub/internal/model"
	"skillhub/internal/repository"
	"skillhub/internal/storage"

	"github.com/google/uuid"
)

const (
	MaxImageSize = 2048 * 1024     // 2MB
	MaxVideoSize = 10000000 * 1024 // 10000000 KB
)

var (
	imageExts = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}
	videoExts = map[string]bool{".mp4": true, ".mov": true, ".avi": true, ".wmv": true}
)

// CategoryService manages categories and their images
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id int) (*model.Category, error)
	Create(ctx context.Context, name string, image *model.Upload) (*model.Category, error)
	Update(ctx context.Context, id int, name string, image *model.Upload) (*model.Category, error)
	Delete(ctx context.Context, id int) error
}

// SubcategoryService manages subcategories, their modules and uploaded media
type SubcategoryService interface {
	List(ctx context.Context) ([]model.Subcategory, error)
	ListByCategory(ctx context.Context, categoryID int) (*model.Category, []model.Subcategory, error)
	Get(ctx context.Context, id int) (*model.Subcategory, error)
	Create(ctx context.Context, req model.SubcategoryRequest, media SubcategoryMedia) (*model.Subcategory, error)
	Update(ctx context.Context, id int, req model.SubcategoryRequest, media SubcategoryMedia) (*model.Subcategory, error)
	Delete(ctx context.Context, id int) error
}

// SubcategoryMedia holds the files uploaded with a subcategory. Videos are keyed by module index.
type SubcategoryMedia struct {
	Image  *model.Upload
	Videos map[int]*model.Upload
}

func checkUpload(field string, up *model.Upload, exts map[string]bool, maxSize int64, types string) *ValidationError {
	if !exts[strings.ToLower(filepath.Ext(up.Filename))] {
		return fieldError(field, fmt.Sprintf("The %s must be a file of type: %s.", field, types))
	}
	if up.Size > maxSize {
		return fieldError(field, fmt.Sprintf("The %s may not be greater than %d kilobytes.", field, maxSize/1024))
	}
	return nil
}

func putUpload(ctx context.Context, blobs storage.BlobStore, dir string, up *model.Upload) (string, error) {
	src, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key, err := blobs.Put(ctx, dir, up.Filename, src, up.Size)
	if err != nil {
		return "", fmt.Errorf("failed to store uploaded file: %w", err)
	}
	return key, nil
}

// removeBlob deletes a replaced file. Failures only leave an orphan behind, so they are logged.
func removeBlob(ctx context.Context, blobs storage.BlobStore, log logging.Logger, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := blobs.Delete(ctx, *key); err != nil {
		log.Warn(ctx, "failed to delete stored file", "key", *key, "error", err)
	}
}

type categoryService struct {
	repo    repository.CategoryRepository
	subRepo repository.SubcategoryRepository
	blobs   storage.BlobStore
	log     logging.Logger
}

func NewCategoryService(repo repository.CategoryRepository, subRepo repository.SubcategoryRepository, blobs storage.BlobStore, log logging.Logger) CategoryService {
	return &categoryService{repo: repo, subRepo: subRepo, blobs: blobs, log: log}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) Get(ctx context.Context, id int) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	if category.Subcategories, err = s.subRepo.ListByCategory(ctx, id); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) checkName(ctx context.Context, name string, selfID int) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return fieldError("name", "The name has already been taken.")
	}
	return nil
}

func (s *categoryService) storeImage(ctx context.Context, image *model.Upload) (*string, error) {
	if image == nil {
		return nil, nil
	}
	key, err := putUpload(ctx, s.blobs, "categories", image)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (s *categoryService) Create(ctx context.Context, name string, image *model.Upload) (*model.Category, error) {
	if image != nil {
		if err := checkUpload("image", image, imageExts, MaxImageSize, "jpeg, png, jpg, gif"); err != nil {
			return nil, err
		}
	}
	if err := s.checkName(ctx, name, 0); err != nil {
		return nil, err
	}

	key, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}
	category := &model.Category{Name: name, Image: key}
	if err := s.repo.Create(ctx, category); err != nil {
		removeBlob(ctx, s.blobs, s.log, key)
		if errors.Is(err, repository.ErrConflict) {
			return nil, fieldError("name", "The name has already been taken.")
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int, name string, image *model.Upload) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	if image != nil {
		if err := checkUpload("image", image, imageExts, MaxImageSize, "jpeg, png, jpg, gif"); err != nil {
			return nil, err
		}
	}
	if err := s.checkName(ctx, name, id); err != nil {
		return nil, err
	}

	oldImage := category.Image
	key, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}
	category.Name = name
	if key != nil {
		category.Image = key
	}
	if err := s.repo.Update(ctx, category); err != nil {
		removeBlob(ctx, s.blobs, s.log, key)
		if errors.Is(err, repository.ErrConflict) {
			return nil, fieldError("name", "The name has already been taken.")
		}
		return nil, err
	}
	if key != nil {
		removeBlob(ctx, s.blobs, s.log, oldImage)
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id int) error {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrNotFound
	}
	// subcategories go with the category, so collect their files first
	subs, err := s.subRepo.ListByCategory(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	removeBlob(ctx, s.blobs, s.log, category.Image)
	for i := range subs {
		removeSubcategoryBlobs(ctx, s.blobs, s.log, &subs[i])
	}
	return nil
}

// subcategoryBlobDirs are the storage directories written only by subcategory uploads.
// Paths outside them were supplied by clients and are never deleted.
var subcategoryBlobDirs = []string{"subcategory/", "videos/"}

func ownedBlob(key *string) bool {
	if key == nil {
		return false
	}
	for _, dir := range subcategoryBlobDirs {
		if strings.HasPrefix(*key, dir) {
			return true
		}
	}
	return false
}

// removeSubcategoryBlobs deletes the uploaded image and module videos of a removed subcategory.
func removeSubcategoryBlobs(ctx context.Context, blobs storage.BlobStore, log logging.Logger, sub *model.Subcategory) {
	if ownedBlob(sub.Images) {
		removeBlob(ctx, blobs, log, sub.Images)
	}
	for i := range sub.Modules {
		if ownedBlob(sub.Modules[i].VideoFile) {
			removeBlob(ctx, blobs, log, sub.Modules[i].VideoFile)
		}
	}
}

type subcategoryService struct {
	repo       repository.SubcategoryRepository
	categories repository.CategoryRepository
	blobs      storage.BlobStore
	log        logging.Logger
	newID      func() string
}

func NewSubcategoryService(repo repository.SubcategoryRepository, categories repository.CategoryRepository, blobs storage.BlobStore, log logging.Logger) SubcategoryService {
	return &subcategoryService{
		repo:       repo,
		categories: categories,
		blobs:      blobs,
		log:        log,
		newID:      func() string { return uuid.NewString() },
	}
}

func (s *subcategoryService) List(ctx context.Context) ([]model.Subcategory, error) {
	return s.repo.List(ctx)
}

func (s *subcategoryService) ListByCategory(ctx context.Context, categoryID int) (*model.Category, []model.Subcategory, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	if category == nil {
		return nil, nil, ErrNotFound
	}
	subs, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	return category, subs, nil
}

func (s *subcategoryService) Get(ctx context.Context, id int) (*model.Subcategory, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

func (s *subcategoryService) validate(ctx context.Context, req model.SubcategoryRequest, media SubcategoryMedia) error {
	verr := &ValidationError{}
	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		return err
	}
	if category == nil {
		verr.Add("category_id", "The selected category id is invalid.")
	}
	if media.Image != nil {
		verr.Merge(checkUpload("images", media.Image, imageExts, MaxImageSize, "jpeg, png, jpg, gif"))
	}
	for i, video := range media.Videos {
		field := fmt.Sprintf("modules.%d.video_file", i)
		if i < 0 || i >= len(req.Modules) {
			verr.Add(field, "The "+field+" does not belong to any module.")
			continue
		}
		verr.Merge(checkUpload(field, video, videoExts, MaxVideoSize, "mp4, mov, avi, wmv"))
	}
	return verr.OrNil()
}

// buildModules turns client input into stored modules. On update, previous is the stored
// list: module ids carry over by index when the input omits them, and video files carry over
// unless a new one is uploaded.
func (s *subcategoryService) buildModules(ctx context.Context, inputs []model.ModuleInput, previous []model.Module, update bool, videos map[int]*model.Upload, stored *[]string) ([]model.Module, error) {
	modules := make([]model.Module, 0, len(inputs))
	for i, in := range inputs {
		var prev *model.Module
		if i < len(previous) {
			prev = &previous[i]
		}

		m := model.Module{
			ModuleName: in.ModuleName,
			VideoURL:   in.VideoURL,
			Questions:  in.Questions,
		}
		if !update {
			m.VideoFile = in.VideoFile
		}
		switch {
		case update && in.ModuleID != nil && *in.ModuleID != "":
			m.ModuleID = *in.ModuleID
		case prev != nil:
			m.ModuleID = prev.ModuleID
		default:
			m.ModuleID = model.ModuleIDPrefix + s.newID()
		}
		if in.IsPassed != nil {
			m.IsPassed = *in.IsPassed
		}
		if m.Questions == nil {
			m.Questions = []model.Question{}
		}

		if video, ok := videos[i]; ok {
			key, err := putUpload(ctx, s.blobs, "videos", video)
			if err != nil {
				return nil, err
			}
			*stored = append(*stored, key)
			m.VideoFile = &key
		} else if update && prev != nil {
			m.VideoFile = prev.VideoFile
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (s *subcategoryService) buildFinalModule(in *model.FinalModuleInput, previous *model.FinalModule) *model.FinalModule {
	if in == nil {
		return nil
	}
	fm := &model.FinalModule{Questions: in.Questions}
	if fm.Questions == nil {
		fm.Questions = []model.Question{}
	}
	if previous != nil {
		fm.ModuleID = previous.ModuleID
	} else {
		fm.ModuleID = model.FinalModuleIDPrefix + s.newID()
	}
	return fm
}

func (s *subcategoryService) discard(ctx context.Context, keys []string) {
	for i := range keys {
		removeBlob(ctx, s.blobs, s.log, &keys[i])
	}
}

func (s *subcategoryService) save(ctx context.Context, sub *model.Subcategory, req model.SubcategoryRequest, media SubcategoryMedia, persist func(*model.Subcategory) error) error {
	var stored []string
	update := sub.ID != 0
	oldImage := sub.Images
	modules, err := s.buildModules(ctx, req.Modules, sub.Modules, update, media.Videos, &stored)
	if err != nil {
		s.discard(ctx, stored)
		return err
	}
	if media.Image != nil {
		key, err := putUpload(ctx, s.blobs, "subcategory", media.Image)
		if err != nil {
			s.discard(ctx, stored)
			return err
		}
		stored = append(stored, key)
		sub.Images = &key
	} else if req.Images != nil {
		sub.Images = req.Images
	}

	sub.Name = req.Name
	sub.CategoryID = req.CategoryID
	sub.Rate = req.Rate
	sub.Modules = modules
	sub.FinalModule = s.buildFinalModule(req.FinalModule, sub.FinalModule)

	if err := persist(sub); err != nil {
		s.discard(ctx, stored)
		if errors.Is(err, repository.ErrReferenceNotFound) {
			return fieldError("category_id", "The selected category id is invalid.")
		}
		return err
	}
	if media.Image != nil {
		removeBlob(ctx, s.blobs, s.log, oldImage)
	}
	return nil
}

func (s *subcategoryService) Create(ctx context.Context, req model.SubcategoryRequest, media SubcategoryMedia) (*model.Subcategory, error) {
	if err := s.validate(ctx, req, media); err != nil {
		return nil, err
	}
	sub := &model.Subcategory{}
	if err := s.save(ctx, sub, req, media, func(sub *model.Subcategory) error {
		return s.repo.Create(ctx, sub)
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, sub.ID)
}

func (s *subcategoryService) Update(ctx context.Context, id int, req model.SubcategoryRequest, media SubcategoryMedia) (*model.Subcategory, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if err := s.validate(ctx, req, media); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sub, req, media, func(sub *model.Subcategory) error {
		return s.repo.Update(ctx, sub)
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, sub.ID)
}

func (s *subcategoryService) Delete(ctx context.Context, id int) error {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrNotFound
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	removeSubcategoryBlobs(ctx, s.blobs, s.log, sub)
	return nil
}
