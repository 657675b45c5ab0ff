package service_test

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/linemk/shop-orders/internal/domain/models"
	"github.com/linemk/shop-orders/internal/storage"
	"github.com/shopspring/decimal"
)

type fakeUserRepo struct {
	users map[string]*models.User // ключ: email
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, storage.ErrUserExists
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, email, role string) error {
	user, ok := f.users[email]
	if !ok {
		return storage.ErrUserNotFound
	}
	user.Role = role
	return nil
}

type fakeProductRepo struct {
	products map[int64]*models.Product
	lockErr  error
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[int64]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) LockProductsTx(ctx context.Context, tx *sql.Tx, ids []int64) (map[int64]*models.Product, error) {
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	res := make(map[int64]*models.Product)
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			// копия, как если бы строка была прочитана из БД
			cp := *p
			cp.Images = append([]string(nil), p.Images...)
			res[id] = &cp
		}
	}
	return res, nil
}

type fakeCartRepo struct {
	carts    map[int64]*models.Cart       // ключ: userID
	items    map[int64][]*models.CartItem // ключ: cartID
	products *fakeProductRepo
	clearErr error
	nextID   int64
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{
		carts:    make(map[int64]*models.Cart),
		items:    make(map[int64][]*models.CartItem),
		products: products,
	}
}

// putItems наполняет корзину пользователя напрямую
func (f *fakeCartRepo) putItems(userID int64, items ...*models.CartItem) *models.Cart {
	cart, _ := f.GetOrCreateCart(context.Background(), userID)
	for _, it := range items {
		f.nextID++
		it.ID = f.nextID
		it.CartID = cart.ID
		f.items[cart.ID] = append(f.items[cart.ID], it)
	}
	return cart
}

func (f *fakeCartRepo) GetOrCreateCart(ctx context.Context, userID int64) (*models.Cart, error) {
	if cart, ok := f.carts[userID]; ok {
		return cart, nil
	}
	cart := &models.Cart{ID: int64(len(f.carts) + 1), UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	f.carts[userID] = cart
	return cart, nil
}

func (f *fakeCartRepo) GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, ok := f.carts[userID]
	if !ok {
		return nil, storage.ErrCartNotFound
	}
	return cart, nil
}

func (f *fakeCartRepo) LockCartByUserIDTx(ctx context.Context, tx *sql.Tx, userID int64) (*models.Cart, error) {
	return f.GetCartByUserID(ctx, userID)
}

func (f *fakeCartRepo) GetCartItemsTx(ctx context.Context, tx *sql.Tx, cartID int64) ([]*models.CartItem, error) {
	var res []*models.CartItem
	for _, it := range f.items[cartID] {
		cp := *it
		cp.Product = nil
		res = append(res, &cp)
	}
	return res, nil
}

func (f *fakeCartRepo) GetCartItemsWithProducts(ctx context.Context, cartID int64) ([]*models.CartItem, error) {
	var res []*models.CartItem
	for _, it := range f.items[cartID] {
		p, ok := f.products.products[it.ProductID]
		if !ok {
			continue // как INNER JOIN
		}
		cp := *it
		cp.Product = p
		res = append(res, &cp)
	}
	return res, nil
}

func (f *fakeCartRepo) UpsertItem(ctx context.Context, cartID, productID int64, quantity int) error {
	if _, ok := f.products.products[productID]; !ok {
		return storage.ErrProductNotFound
	}
	for _, it := range f.items[cartID] {
		if it.ProductID == productID {
			it.Quantity += quantity
			return nil
		}
	}
	f.nextID++
	f.items[cartID] = append(f.items[cartID], &models.CartItem{ID: f.nextID, CartID: cartID, ProductID: productID, Quantity: quantity})
	return nil
}

func (f *fakeCartRepo) UpdateItemQuantity(ctx context.Context, cartID, productID int64, quantity int) error {
	for _, it := range f.items[cartID] {
		if it.ProductID == productID {
			it.Quantity = quantity
			return nil
		}
	}
	return storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) RemoveItem(ctx context.Context, cartID, productID int64) error {
	items := f.items[cartID]
	for i, it := range items {
		if it.ProductID == productID {
			f.items[cartID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) ClearCartTx(ctx context.Context, tx *sql.Tx, cartID int64) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.items, cartID)
	return nil
}

type fakeOrderRepo struct {
	orders       map[int64]*models.Order
	owners       map[int64]*models.OrderOwner
	createErr    error
	createItmErr error
	nextItemID   int64
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[int64]*models.Order),
		owners: make(map[int64]*models.OrderOwner),
	}
}

// addOrder кладёт готовый заказ в хранилище
func (f *fakeOrderRepo) addOrder(o *models.Order) *models.Order {
	f.orders[o.ID] = o
	return o
}

func (f *fakeOrderRepo) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = int64(len(f.orders) + 1)
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	stored.Items = nil
	f.orders[order.ID] = &stored
	return nil
}

func (f *fakeOrderRepo) CreateOrderItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	if f.createItmErr != nil {
		return f.createItmErr
	}
	f.nextItemID++
	item.ID = f.nextItemID
	stored := *item
	o := f.orders[item.OrderID]
	o.Items = append(o.Items, &stored)
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrderRepo) LockOrderByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Order, error) {
	o, err := f.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = nil
	return o, nil
}

func (f *fakeOrderRepo) UpdateOrderStatusTx(ctx context.Context, tx *sql.Tx, id int64, status models.OrderStatus) (time.Time, error) {
	o, ok := f.orders[id]
	if !ok {
		return time.Time{}, storage.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return o.UpdatedAt, nil
}

func (f *fakeOrderRepo) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	return f.orders[orderID].Items, nil
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	var res []*models.Order
	for _, o := range f.sorted() {
		if o.UserID == userID {
			res = append(res, o)
		}
	}
	return res, nil
}

func (f *fakeOrderRepo) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	res := f.sorted()
	for _, o := range res {
		o.User = f.owners[o.UserID]
	}
	return res, nil
}

// новые первыми
func (f *fakeOrderRepo) sorted() []*models.Order {
	res := make([]*models.Order, 0, len(f.orders))
	for _, o := range f.orders {
		cp := *o
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func discount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}
