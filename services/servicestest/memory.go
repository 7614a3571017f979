// Package servicestest provides in-memory repositories and a recording mailer
// for exercising the services without a database.
package servicestest

import (
	"context"
	"errors"
	"sync"
	"time"

	"ecommerce-backend/models"
	"ecommerce-backend/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users is an in-memory services.UserRepository.
type Users struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{users: map[primitive.ObjectID]models.User{}}
}

func (m *Users) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return errors.New("duplicate email")
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (m *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Users) FindByResetToken(_ context.Context, digest string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ResetPasswordToken == digest && u.ResetPasswordExpiry != nil && u.ResetPasswordExpiry.After(now) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *Users) EmailTaken(_ context.Context, email string, exclude primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if u.Email == email && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (m *Users) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *Users) mutate(id primitive.ObjectID, fn func(*models.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(&u)
	m.users[id] = u
	return nil
}

func (m *Users) SetResetToken(_ context.Context, id primitive.ObjectID, digest string, expiry time.Time) error {
	return m.mutate(id, func(u *models.User) {
		u.ResetPasswordToken = digest
		u.ResetPasswordExpiry = &expiry
	})
}

func (m *Users) ClearResetToken(_ context.Context, id primitive.ObjectID) error {
	return m.mutate(id, func(u *models.User) {
		u.ResetPasswordToken = ""
		u.ResetPasswordExpiry = nil
	})
}

func (m *Users) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return m.mutate(id, func(u *models.User) {
		u.Password = hash
		u.ResetPasswordToken = ""
		u.ResetPasswordExpiry = nil
	})
}

func (m *Users) UpdateProfile(_ context.Context, id primitive.ObjectID, name, email string) error {
	return m.mutate(id, func(u *models.User) {
		u.Name = name
		u.Email = email
	})
}

func (m *Users) UpdateRole(_ context.Context, id primitive.ObjectID, role string) error {
	return m.mutate(id, func(u *models.User) { u.Role = role })
}

func (m *Users) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// Products is an in-memory services.ProductRepository. FailStock makes
// AdjustStock fail for the listed products.
type Products struct {
	mu        sync.Mutex
	products  map[primitive.ObjectID]models.Product
	LastQuery store.ProductQuery
	FailStock map[primitive.ObjectID]bool
}

func NewProducts() *Products {
	return &Products{
		products:  map[primitive.ObjectID]models.Product{},
		FailStock: map[primitive.ObjectID]bool{},
	}
}

func (m *Products) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.products[p.ID] = *p
	return nil
}

func (m *Products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	p.Reviews = append([]models.Review(nil), p.Reviews...)
	return &p, nil
}

// Find honours only the page window; filter semantics belong to Mongo.
func (m *Products) Find(_ context.Context, q store.ProductQuery) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastQuery = q
	out := []models.Product{}
	for _, p := range m.products {
		out = append(out, p)
	}
	if int(q.Skip) >= len(out) {
		return []models.Product{}, nil
	}
	out = out[q.Skip:]
	if q.Limit > 0 && int(q.Limit) < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Products) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), nil
}

func (m *Products) Replace(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	m.products[p.ID] = *p
	return nil
}

func (m *Products) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *Products) SaveReviews(_ context.Context, id primitive.ObjectID, reviews []models.Review, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Reviews = append([]models.Review(nil), reviews...)
	p.Rating = rating
	p.NumOfReviews = len(reviews)
	m.products[id] = p
	return nil
}

func (m *Products) AdjustStock(_ context.Context, id primitive.ObjectID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStock[id] {
		return errors.New("stock update failed")
	}
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Stock += delta
	m.products[id] = p
	return nil
}

// Orders is an in-memory services.OrderRepository.
type Orders struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]models.Order
}

func NewOrders() *Orders {
	return &Orders{orders: map[primitive.ObjectID]models.Order{}}
}

func (m *Orders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (m *Orders) FindByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if o.User == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *Orders) FindAll(_ context.Context) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *Orders) SetStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus, deliveredAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return store.ErrNotFound
	}
	o.OrderStatus = status
	if deliveredAt != nil {
		o.DeliveredAt = deliveredAt
	}
	m.orders[id] = o
	return nil
}

func (m *Orders) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

// Mailer records every message it is asked to send and returns Err.
type Mailer struct {
	mu   sync.Mutex
	To   []string
	Body []string
	Err  error
}

func (r *Mailer) SendEmail(toEmail, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.To = append(r.To, toEmail)
	r.Body = append(r.Body, body)
	return r.Err
}
