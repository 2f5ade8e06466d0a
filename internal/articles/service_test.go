package articles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trade-manager/trade-manager/internal/platform/httpx"
)

type fakeStore struct {
	nextID     int64
	articles   map[int64]Article
	variations map[int64]Variation
	codes      map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		articles:   map[int64]Article{},
		variations: map[int64]Variation{},
		codes:      map[string]bool{},
	}
}

func (f *fakeStore) Insert(ctx context.Context, a Article) (int64, error) {
	if f.codes[a.Code] {
		return 0, httpx.ErrDuplicate
	}
	f.nextID++
	a.ID = f.nextID
	f.articles[a.ID] = a
	f.codes[a.Code] = true
	return a.ID, nil
}

func (f *fakeStore) Get(ctx context.Context, id int64) (*Article, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	vars, _ := f.ListVariations(ctx, id)
	a.Variations = vars
	return &a, nil
}

func (f *fakeStore) List(ctx context.Context, filter ListFilter) ([]Article, int, error) {
	out := []Article{}
	for _, a := range f.articles {
		out = append(out, a)
	}
	return out, len(out), nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	a, ok := f.articles[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		a.Name = v.(string)
	}
	if v, ok := updates["price"]; ok {
		a.Price = v.(float64)
	}
	if v, ok := updates["is_active"]; ok {
		a.IsActive = v.(bool)
	}
	f.articles[id] = a
	return nil
}

func (f *fakeStore) ListVariations(ctx context.Context, articleID int64) ([]Variation, error) {
	out := []Variation{}
	for _, v := range f.variations {
		if v.ArticleID == articleID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertVariation(ctx context.Context, v Variation) (int64, error) {
	f.nextID++
	v.ID = f.nextID
	f.variations[v.ID] = v
	return v.ID, nil
}

func (f *fakeStore) DeleteVariation(ctx context.Context, articleID, variationID int64) error {
	v, ok := f.variations[variationID]
	if !ok || v.ArticleID != articleID {
		return httpx.ErrNotFound
	}
	delete(f.variations, variationID)
	return nil
}

type fakeStockInit struct {
	inited [][]int64
}

func (f *fakeStockInit) InitArticle(ctx context.Context, articleID int64, variationIDs []int64) error {
	f.inited = append(f.inited, variationIDs)
	return nil
}

type fakeInvalidator struct{ bumps int }

func (f *fakeInvalidator) Invalidate(ctx context.Context) error {
	f.bumps++
	return nil
}

func TestCreateArticleWithVariations(t *testing.T) {
	store := newFakeStore()
	stock := &fakeStockInit{}
	inv := &fakeInvalidator{}
	svc := NewService(store, stock, inv)

	article, err := svc.Create(context.Background(), CreateArticleRequest{
		Code:       "TS-01",
		Name:       "T-Shirt",
		Price:      25,
		Variations: []string{"S", "M", "L"},
	})
	require.NoError(t, err)
	require.True(t, article.IsActive)
	require.Len(t, article.Variations, 3)
	require.Len(t, stock.inited, 1)
	require.Len(t, stock.inited[0], 3)
	require.Equal(t, 1, inv.bumps)
}

func TestCreateDuplicateCodeConflicts(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)

	_, err := svc.Create(context.Background(), CreateArticleRequest{Code: "X", Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateArticleRequest{Code: "X", Name: "Second"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	_, err := svc.Create(context.Background(), CreateArticleRequest{Name: "No code"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdatePartial(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil, nil)

	created, err := svc.Create(context.Background(), CreateArticleRequest{Code: "A", Name: "Old", Price: 10})
	require.NoError(t, err)

	name := "New"
	updated, err := svc.Update(context.Background(), created.ID, UpdateArticleRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "New", updated.Name)
	require.Equal(t, 10.0, updated.Price, "unset fields stay put")
}

func TestUpdateMissingArticle(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	name := "X"
	_, err := svc.Update(context.Background(), 42, UpdateArticleRequest{Name: &name})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAddAndRemoveVariation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &fakeStockInit{}, nil)

	article, err := svc.Create(context.Background(), CreateArticleRequest{Code: "B", Name: "Bag"})
	require.NoError(t, err)

	v, err := svc.AddVariation(context.Background(), article.ID, AddVariationRequest{Name: "Leather"})
	require.NoError(t, err)
	require.Equal(t, article.ID, v.ArticleID)

	require.NoError(t, svc.RemoveVariation(context.Background(), article.ID, v.ID))
	err = svc.RemoveVariation(context.Background(), article.ID, v.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestAddVariationToMissingArticle(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	_, err := svc.AddVariation(context.Background(), 99, AddVariationRequest{Name: "X"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
