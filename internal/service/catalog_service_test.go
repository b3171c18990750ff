package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/domain"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/repository/memstore"
	apperrors "github.com/tsai-yu-xuan/vuetify-shop-back/pkg/util"
)

func ptr[T any](v T) *T { return &v }

func newCatalog() *CatalogService {
	store := memstore.New()
	return NewCatalogService(CatalogDependencies{
		Products: store.Products(),
		Services: store.Services(),
		Worships: store.Worships(),
	})
}

func TestCreateProductValidation(t *testing.T) {
	catalog := newCatalog()
	ctx := context.Background()

	valid := ItemInput{
		Name:        ptr("Shirt"),
		Price:       ptr(0),
		Description: ptr("cotton"),
		Category:    ptr("clothing"),
		Sell:        ptr(false),
		Image:       "/uploads/shirt.png",
	}
	product, err := catalog.CreateProduct(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductCategoryClothing, product.Category)
	assert.NotEmpty(t, product.ID)

	cases := map[string]func(in *ItemInput){
		"missing name":     func(in *ItemInput) { in.Name = nil },
		"blank name":       func(in *ItemInput) { in.Name = ptr("  ") },
		"negative price":   func(in *ItemInput) { in.Price = ptr(-1) },
		"unknown category": func(in *ItemInput) { in.Category = ptr("cremation") },
		"missing sell":     func(in *ItemInput) { in.Sell = nil },
		"missing image":    func(in *ItemInput) { in.Image = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := catalog.CreateProduct(ctx, in)
			require.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}
}

func TestUpdateProductIsPartial(t *testing.T) {
	catalog := newCatalog()
	ctx := context.Background()

	product, err := catalog.CreateProduct(ctx, ItemInput{
		Name: ptr("Phone"), Price: ptr(900), Description: ptr("fast"),
		Category: ptr("phone"), Sell: ptr(true), Image: "/uploads/phone.png",
	})
	require.NoError(t, err)

	updated, err := catalog.UpdateProduct(ctx, product.ID, ItemInput{Sell: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Sell)
	assert.Equal(t, "Phone", updated.Name)
	assert.Equal(t, "/uploads/phone.png", updated.Image)

	_, err = catalog.UpdateProduct(ctx, "nope", ItemInput{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidID))

	_, err = catalog.UpdateProduct(ctx, uuid.NewString(), ItemInput{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Equal(t, 404, apperrors.ToDomainError(err).HTTPStatus)
}

func TestListProductsPagingAndListedOnly(t *testing.T) {
	catalog := newCatalog()
	ctx := context.Background()
	for i, name := range []string{"a", "b", "c"} {
		_, err := catalog.CreateProduct(ctx, ItemInput{
			Name: ptr(name), Price: ptr(i), Description: ptr("d"),
			Category: ptr("game"), Sell: ptr(name != "b"), Image: "img",
		})
		require.NoError(t, err)
	}

	listed, err := catalog.ListProducts(ctx, ListQuery{OnlyListed: true, ItemsPerPage: -1, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 2, listed.Total)
	require.Len(t, listed.Data, 2)
	assert.Equal(t, "a", listed.Data[0].Name)
	assert.Equal(t, "c", listed.Data[1].Name)

	page, err := catalog.ListProducts(ctx, ListQuery{SortBy: "price", SortOrder: "desc", Page: 2, ItemsPerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "a", page.Data[0].Name)
}

func TestServiceAndWorshipCRUD(t *testing.T) {
	catalog := newCatalog()
	ctx := context.Background()

	svc, err := catalog.CreateService(ctx, ItemInput{
		Name: ptr("Group"), Price: ptr(5000), Description: ptr("shared"),
		Category: ptr("group_cremation"), Sell: ptr(true), Image: "img",
	})
	require.NoError(t, err)

	_, err = catalog.UpdateService(ctx, svc.ID, ItemInput{Category: ptr("clothing")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	got, err := catalog.GetService(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceCategoryGroupCremation, got.Category)

	_, err = catalog.CreateWorship(ctx, WorshipInput{Name: ptr("Mochi")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	entry, err := catalog.CreateWorship(ctx, WorshipInput{Name: ptr("Mochi"), Image: "img"})
	require.NoError(t, err)
	assert.Nil(t, entry.Date)

	entry, err = catalog.UpdateWorship(ctx, entry.ID, WorshipInput{Description: ptr("good dog")})
	require.NoError(t, err)
	assert.Equal(t, "good dog", entry.Description)

	list, err := catalog.ListWorships(ctx, ListQuery{Search: "mochi"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
}
