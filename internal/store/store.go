package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fridgepos/internal/models"
	"fridgepos/internal/persistence"
)

// Collection names, used both as persistence keys and in change
// notifications.
const (
	CollectionUsers          = "users"
	CollectionInventory      = "inventory"
	CollectionWholesalers    = "wholesalers"
	CollectionInvoices       = "invoices"
	CollectionPurchaseOrders = "purchase_orders"
	CollectionNotifications  = "notifications"
	CollectionDeliveries     = "delivery_requests"
	CollectionTokens         = "verification_tokens"
	CollectionSettings       = "settings"
)

// Subscriber is invoked with the name of each collection after it mutates.
// The presentation layer uses this to re-render from the updated snapshot.
type Subscriber func(collection string)

// Store owns the in-memory entity collections. It is the single source of
// truth: reads are always served from memory, and every mutation is mirrored
// best-effort to the persistence layer. A nil persistence layer disables
// mirroring entirely.
//
// Mutations are serialized by the mutex; background jobs only ever read.
type Store struct {
	mu sync.RWMutex

	users          map[string]*models.User
	inventory      map[string]*models.InventoryItem
	wholesalers    map[string]*models.Wholesaler
	invoices       map[string]*models.Invoice
	purchaseOrders map[string]*models.PurchaseOrder
	notifications  map[string]*models.Notification
	deliveries     map[string]*models.DeliveryRequest
	tokens         map[string]*models.VerificationToken // keyed by redbox id
	settings       models.AppSettings

	kv   persistence.Store
	log  zerolog.Logger
	subs []Subscriber
}

// New creates an empty store. Call Load to seed it from persistence.
func New(kv persistence.Store, log zerolog.Logger) *Store {
	return &Store{
		users:          make(map[string]*models.User),
		inventory:      make(map[string]*models.InventoryItem),
		wholesalers:    make(map[string]*models.Wholesaler),
		invoices:       make(map[string]*models.Invoice),
		purchaseOrders: make(map[string]*models.PurchaseOrder),
		notifications:  make(map[string]*models.Notification),
		deliveries:     make(map[string]*models.DeliveryRequest),
		tokens:         make(map[string]*models.VerificationToken),
		settings:       models.DefaultSettings(),
		kv:             kv,
		log:            log,
	}
}

// Subscribe registers a change-notification callback. Subscribers run
// synchronously after the mutation has been applied and mirrored, outside
// the store lock.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Load seeds every collection from the persistence layer. Collections with
// nothing stored fall back to defaults: a seed admin and cashier account,
// and the default settings record.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv == nil {
		s.seedDefaultsLocked()
		return nil
	}

	var users []*models.User
	found, err := s.kv.Load(ctx, CollectionUsers, &users)
	if err != nil {
		return err
	}
	if found {
		for _, u := range users {
			s.users[u.ID] = u
		}
	} else {
		s.seedDefaultsLocked()
	}

	var items []*models.InventoryItem
	if found, err = s.kv.Load(ctx, CollectionInventory, &items); err != nil {
		return err
	} else if found {
		for _, it := range items {
			s.inventory[it.ID] = it
		}
	}

	var wholesalers []*models.Wholesaler
	if found, err = s.kv.Load(ctx, CollectionWholesalers, &wholesalers); err != nil {
		return err
	} else if found {
		for _, w := range wholesalers {
			s.wholesalers[w.ID] = w
		}
	}

	var invoices []*models.Invoice
	if found, err = s.kv.Load(ctx, CollectionInvoices, &invoices); err != nil {
		return err
	} else if found {
		for _, inv := range invoices {
			s.invoices[inv.ID] = inv
		}
	}

	var orders []*models.PurchaseOrder
	if found, err = s.kv.Load(ctx, CollectionPurchaseOrders, &orders); err != nil {
		return err
	} else if found {
		for _, po := range orders {
			s.purchaseOrders[po.ID] = po
		}
	}

	var notifs []*models.Notification
	if found, err = s.kv.Load(ctx, CollectionNotifications, &notifs); err != nil {
		return err
	} else if found {
		for _, n := range notifs {
			s.notifications[n.ID] = n
		}
	}

	var deliveries []*models.DeliveryRequest
	if found, err = s.kv.Load(ctx, CollectionDeliveries, &deliveries); err != nil {
		return err
	} else if found {
		for _, d := range deliveries {
			s.deliveries[d.ID] = d
		}
	}

	var tokens []*models.VerificationToken
	if found, err = s.kv.Load(ctx, CollectionTokens, &tokens); err != nil {
		return err
	} else if found {
		for _, t := range tokens {
			s.tokens[t.RedboxID] = t
		}
	}

	var settings models.AppSettings
	if found, err = s.kv.Load(ctx, CollectionSettings, &settings); err != nil {
		return err
	} else if found {
		s.settings = settings
	}

	return nil
}

func (s *Store) seedDefaultsLocked() {
	for _, u := range defaultUsers() {
		s.users[u.ID] = u
	}
}

// defaultUsers are the accounts present on a fresh install; passwords are
// expected to be changed in settings.
func defaultUsers() []*models.User {
	return []*models.User{
		{
			ID:          "1",
			Name:        "System Admin",
			Mobile:      "0000000",
			Username:    "admin",
			Email:       "admin@local.pos",
			Role:        models.RoleAdmin,
			CreditLimit: decimal.Zero,
			Status:      models.UserActive,
			Password:    "admin",
		},
		{
			ID:          "2",
			Name:        "Main Cashier",
			Mobile:      "0000000",
			Username:    "cashier",
			Email:       "cashier@local.pos",
			Role:        models.RoleCashier,
			CreditLimit: decimal.Zero,
			Status:      models.UserActive,
			Password:    "123",
		},
	}
}

// afterMutation mirrors the collection snapshot and fires subscribers. The
// mirror is best-effort: a failed write is logged and forgotten, because
// reads are always served from memory.
func (s *Store) afterMutation(ctx context.Context, collection string, snapshot any) {
	if s.kv != nil {
		if err := s.kv.Save(ctx, collection, snapshot); err != nil {
			s.log.Warn().Err(err).Str("collection", collection).Msg("persistence mirror write failed")
		}
	}
	s.mu.RLock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(collection)
	}
}

// --- Users ---

func (s *Store) GetUser(id string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

// FindUserByUsername matches case-insensitively.
func (s *Store) FindUserByUsername(username string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, true
		}
	}
	return nil, false
}

func (s *Store) FindUserByRedboxID(redboxID string) (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.RedboxID == redboxID {
			cp := *u
			return &cp, true
		}
	}
	return nil, false
}

func (s *Store) ListUsers() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	sortByID(out, func(u *models.User) string { return u.ID })
	return out
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) {
	s.mu.Lock()
	cp := *u
	s.users[u.ID] = &cp
	snap := s.userSnapshotLocked()
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionUsers, snap)
}

func (s *Store) BulkSaveUsers(ctx context.Context, users []*models.User) {
	s.mu.Lock()
	for _, u := range users {
		cp := *u
		s.users[u.ID] = &cp
	}
	snap := s.userSnapshotLocked()
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionUsers, snap)
}

// DeleteUser removes an account. The ledger engine never calls this; it
// exists for the presentation layer's administrative actions.
func (s *Store) DeleteUser(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.users, id)
	snap := s.userSnapshotLocked()
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionUsers, snap)
}

func (s *Store) userSnapshotLocked() []*models.User {
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sortByID(out, func(u *models.User) string { return u.ID })
	return out
}

// --- Inventory ---

func (s *Store) GetInventoryItem(id string) (*models.InventoryItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.inventory[id]
	if !ok {
		return nil, false
	}
	cp := *it
	return &cp, true
}

func (s *Store) ListInventory() []*models.InventoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.InventoryItem, 0, len(s.inventory))
	for _, it := range s.inventory {
		cp := *it
		out = append(out, &cp)
	}
	sortByID(out, func(it *models.InventoryItem) string { return it.ID })
	return out
}

func (s *Store) SaveInventoryItem(ctx context.Context, it *models.InventoryItem) {
	s.mu.Lock()
	cp := *it
	s.inventory[it.ID] = &cp
	snap := s.inventorySnapshotLocked()
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionInventory, snap)
}

func (s *Store) BulkSaveInventoryItems(ctx context.Context, items []*models.InventoryItem) {
	s.mu.Lock()
	for _, it := range items {
		cp := *it
		s.inventory[it.ID] = &cp
	}
	snap := s.inventorySnapshotLocked()
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionInventory, snap)
}

func (s *Store) inventorySnapshotLocked() []*models.InventoryItem {
	out := make([]*models.InventoryItem, 0, len(s.inventory))
	for _, it := range s.inventory {
		out = append(out, it)
	}
	sortByID(out, func(it *models.InventoryItem) string { return it.ID })
	return out
}

// --- Wholesalers ---

func (s *Store) GetWholesaler(id string) (*models.Wholesaler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wholesalers[id]
	if !ok {
		return nil, false
	}
	cp := *w
	cp.LinkedInventoryIDs = append([]string(nil), w.LinkedInventoryIDs...)
	cp.Tags = append([]string(nil), w.Tags...)
	return &cp, true
}

func (s *Store) ListWholesalers() []*models.Wholesaler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Wholesaler, 0, len(s.wholesalers))
	for _, w := range s.wholesalers {
		cp := *w
		out = append(out, &cp)
	}
	sortByID(out, func(w *models.Wholesaler) string { return w.ID })
	return out
}

func (s *Store) SaveWholesaler(ctx context.Context, w *models.Wholesaler) {
	s.mu.Lock()
	cp := *w
	s.wholesalers[w.ID] = &cp
	snap := make([]*models.Wholesaler, 0, len(s.wholesalers))
	for _, x := range s.wholesalers {
		snap = append(snap, x)
	}
	sortByID(snap, func(x *models.Wholesaler) string { return x.ID })
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionWholesalers, snap)
}

// --- Invoices ---

func (s *Store) GetInvoice(id string) (*models.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, false
	}
	return cloneInvoice(inv), true
}

func (s *Store) ListInvoices() []*models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		out = append(out, cloneInvoice(inv))
	}
	sortByDate(out, func(inv *models.Invoice) time.Time { return inv.Date })
	return out
}

func (s *Store) ListInvoicesByCustomer(customerID string) []*models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Invoice
	for _, inv := range s.invoices {
		if inv.CustomerID == customerID {
			out = append(out, cloneInvoice(inv))
		}
	}
	sortByDate(out, func(inv *models.Invoice) time.Time { return inv.Date })
	return out
}

func (s *Store) SaveInvoice(ctx context.Context, inv *models.Invoice) {
	s.mu.Lock()
	s.invoices[inv.ID] = cloneInvoice(inv)
	snap := make([]*models.Invoice, 0, len(s.invoices))
	for _, x := range s.invoices {
		snap = append(snap, x)
	}
	sortByID(snap, func(x *models.Invoice) string { return x.ID })
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionInvoices, snap)
}

func cloneInvoice(inv *models.Invoice) *models.Invoice {
	cp := *inv
	cp.Items = append([]models.InvoiceItem(nil), inv.Items...)
	return &cp
}

// --- Purchase orders ---

func (s *Store) GetPurchaseOrder(id string) (*models.PurchaseOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	po, ok := s.purchaseOrders[id]
	if !ok {
		return nil, false
	}
	return clonePurchaseOrder(po), true
}

func (s *Store) ListPurchaseOrders() []*models.PurchaseOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.PurchaseOrder, 0, len(s.purchaseOrders))
	for _, po := range s.purchaseOrders {
		out = append(out, clonePurchaseOrder(po))
	}
	sortByDate(out, func(po *models.PurchaseOrder) time.Time { return po.Date })
	return out
}

func (s *Store) SavePurchaseOrder(ctx context.Context, po *models.PurchaseOrder) {
	s.mu.Lock()
	s.purchaseOrders[po.ID] = clonePurchaseOrder(po)
	snap := make([]*models.PurchaseOrder, 0, len(s.purchaseOrders))
	for _, x := range s.purchaseOrders {
		snap = append(snap, x)
	}
	sortByID(snap, func(x *models.PurchaseOrder) string { return x.ID })
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionPurchaseOrders, snap)
}

func clonePurchaseOrder(po *models.PurchaseOrder) *models.PurchaseOrder {
	cp := *po
	cp.Items = append([]models.POItem(nil), po.Items...)
	cp.Timeline = append([]models.POTimelineEvent(nil), po.Timeline...)
	return &cp
}

// --- Notifications ---

func (s *Store) SaveNotification(ctx context.Context, n *models.Notification) {
	s.mu.Lock()
	cp := *n
	s.notifications[n.ID] = &cp
	snap := s.notificationSnapshotLocked()
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionNotifications, snap)
}

func (s *Store) GetNotification(id string) (*models.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, false
	}
	cp := *n
	return &cp, true
}

// ListNotificationsForUser returns notifications addressed to the user or
// broadcast to ALL, newest first.
func (s *Store) ListNotificationsForUser(userID string) []*models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.TargetUserID == userID || n.TargetUserID == models.NotificationTargetAll {
			cp := *n
			out = append(out, &cp)
		}
	}
	sortByDate(out, func(n *models.Notification) time.Time { return n.Date })
	return out
}

func (s *Store) notificationSnapshotLocked() []*models.Notification {
	out := make([]*models.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, n)
	}
	sortByID(out, func(n *models.Notification) string { return n.ID })
	return out
}

// --- Delivery requests ---

func (s *Store) GetDeliveryRequest(id string) (*models.DeliveryRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deliveries[id]
	if !ok {
		return nil, false
	}
	cp := *d
	return &cp, true
}

func (s *Store) ListDeliveryRequestsByCustomer(customerID string) []*models.DeliveryRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.DeliveryRequest
	for _, d := range s.deliveries {
		if d.CustomerID == customerID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sortByDate(out, func(d *models.DeliveryRequest) time.Time { return d.Date })
	return out
}

func (s *Store) SaveDeliveryRequest(ctx context.Context, d *models.DeliveryRequest) {
	s.mu.Lock()
	cp := *d
	s.deliveries[d.ID] = &cp
	snap := make([]*models.DeliveryRequest, 0, len(s.deliveries))
	for _, x := range s.deliveries {
		snap = append(snap, x)
	}
	sortByID(snap, func(x *models.DeliveryRequest) string { return x.ID })
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionDeliveries, snap)
}

// --- Verification tokens ---

// PutVerificationToken stores a token, replacing any live token for the same
// identity.
func (s *Store) PutVerificationToken(ctx context.Context, t *models.VerificationToken) {
	s.mu.Lock()
	cp := *t
	s.tokens[t.RedboxID] = &cp
	snap := s.tokenSnapshotLocked()
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionTokens, snap)
}

func (s *Store) GetVerificationToken(redboxID string) (*models.VerificationToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[redboxID]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

func (s *Store) DeleteVerificationToken(ctx context.Context, redboxID string) {
	s.mu.Lock()
	delete(s.tokens, redboxID)
	snap := s.tokenSnapshotLocked()
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionTokens, snap)
}

// DeleteExpiredTokens removes every token past its expiry and returns how
// many were dropped.
func (s *Store) DeleteExpiredTokens(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	removed := 0
	for id, t := range s.tokens {
		if t.Expired(now) {
			delete(s.tokens, id)
			removed++
		}
	}
	var snap []*models.VerificationToken
	if removed > 0 {
		snap = s.tokenSnapshotLocked()
	}
	s.mu.Unlock()
	if removed > 0 {
		s.afterMutation(ctx, CollectionTokens, snap)
	}
	return removed
}

func (s *Store) tokenSnapshotLocked() []*models.VerificationToken {
	out := make([]*models.VerificationToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		out = append(out, t)
	}
	sortByID(out, func(t *models.VerificationToken) string { return t.RedboxID })
	return out
}

// --- Settings ---

func (s *Store) Settings() models.AppSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Store) UpdateSettings(ctx context.Context, settings models.AppSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.afterMutation(ctx, CollectionSettings, settings)
}

// --- helpers ---

func sortByID[T any](items []*T, id func(*T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

func sortByDate[T any](items []*T, date func(*T) time.Time) {
	sort.Slice(items, func(i, j int) bool { return date(items[i]).After(date(items[j])) })
}
