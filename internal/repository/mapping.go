package repository

import (
	"encoding/json"

	"stylecore/internal/model"
	"stylecore/internal/store"
)

func productFromRecord(r store.Record) *model.Product {
	p := &model.Product{
		ID:             r.String("id"),
		Title:          r.String("title"),
		Description:    r.String("description"),
		Price:          r.Decimal("price"),
		CompareAtPrice: r.DecimalPtr("compare_at_price"),
		Category:       r.String("category"),
		SKU:            r.String("sku"),
		Stock:          int(r.Int("stock")),
		IsActive:       r.Bool("is_active"),
		CreatedAt:      r.Time("created_at"),
		UpdatedAt:      r.Time("updated_at"),
	}
	if !r.DecodeJSON("images", &p.Images) || p.Images == nil {
		p.Images = []string{}
	}
	r.DecodeJSON("attributes", &p.Attributes)
	return p
}

func productValues(p *model.Product) store.Record {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	values := store.Record{
		"id":               p.ID,
		"title":            p.Title,
		"description":      nullString(p.Description),
		"price":            p.Price,
		"compare_at_price": nil,
		"category":         nullString(p.Category),
		"images":           jsonValue(images),
		"sku":              nullString(p.SKU),
		"stock":            p.Stock,
		"is_active":        p.IsActive,
		"attributes":       nil,
	}
	if p.CompareAtPrice != nil {
		values["compare_at_price"] = *p.CompareAtPrice
	}
	if p.Attributes != nil {
		values["attributes"] = jsonValue(p.Attributes)
	}
	if !p.CreatedAt.IsZero() {
		values["created_at"] = p.CreatedAt
	}
	return values
}

func productPatch(patch *model.ProductPatch) store.Patch {
	out := store.Patch{}
	setField(out, "title", patch.Title, nil)
	setField(out, "description", patch.Description, nil)
	setField(out, "price", patch.Price, nil)
	setField(out, "compare_at_price", patch.CompareAtPrice, nil)
	setField(out, "category", patch.Category, nil)
	setField(out, "images", patch.Images, func(v []string) any {
		if v == nil {
			v = []string{}
		}
		return jsonValue(v)
	})
	setField(out, "sku", patch.SKU, nil)
	setField(out, "stock", patch.Stock, nil)
	setField(out, "is_active", patch.IsActive, nil)
	setField(out, "attributes", patch.Attributes, func(v map[string]any) any {
		return jsonValue(v)
	})
	return out
}

// setField copies a supplied patch field into out. A null field clears the
// column.
func setField[T any](out store.Patch, column string, f model.Field[T], conv func(T) any) {
	if !f.IsSet() {
		return
	}
	v, ok := f.Value()
	if !ok {
		out[column] = nil
		return
	}
	if conv != nil {
		out[column] = conv(v)
		return
	}
	out[column] = v
}

func userFromRecord(r store.Record) *model.User {
	u := &model.User{
		ID:              r.String("id"),
		Name:            r.String("name"),
		Email:           r.String("email"),
		PasswordHash:    r.String("password"),
		Phone:           r.String("phone"),
		IsPhoneVerified: r.Bool("is_phone_verified"),
		IsVerified:      r.Bool("is_verified"),
		ResetToken:      r.String("reset_token"),
		ResetExpires:    r.TimePtr("reset_expires"),
		OTPCode:         r.String("otp_code"),
		OTPExpires:      r.TimePtr("otp_expires"),
		CreatedAt:       r.Time("created_at"),
		UpdatedAt:       r.Time("updated_at"),
	}
	if !r.DecodeJSON("refresh_tokens", &u.RefreshTokens) || u.RefreshTokens == nil {
		u.RefreshTokens = []string{}
	}
	if !r.DecodeJSON("wishlist", &u.Wishlist) || u.Wishlist == nil {
		u.Wishlist = []string{}
	}
	return u
}

func userValues(u *model.User) store.Record {
	tokens := u.RefreshTokens
	if tokens == nil {
		tokens = []string{}
	}
	wishlist := u.Wishlist
	if wishlist == nil {
		wishlist = []string{}
	}
	return store.Record{
		"id":                u.ID,
		"name":              nullString(u.Name),
		"email":             u.Email,
		"password":          nullString(u.PasswordHash),
		"phone":             nullString(u.Phone),
		"is_phone_verified": u.IsPhoneVerified,
		"is_verified":       u.IsVerified,
		"refresh_tokens":    jsonValue(tokens),
		"wishlist":          jsonValue(wishlist),
	}
}

func addressFromRecord(r store.Record) *model.Address {
	return &model.Address{
		ID:        r.Int("id"),
		UserID:    r.String("user_id"),
		FullName:  r.String("full_name"),
		Phone:     r.String("phone"),
		Pincode:   r.String("pincode"),
		State:     r.String("state"),
		District:  r.String("district"),
		City:      r.String("city"),
		Address1:  r.String("address1"),
		Landmark:  r.String("landmark"),
		CreatedAt: r.Time("created_at"),
	}
}

func addressValues(a *model.Address) store.Record {
	return store.Record{
		"user_id":   a.UserID,
		"full_name": nullString(a.FullName),
		"phone":     nullString(a.Phone),
		"pincode":   nullString(a.Pincode),
		"state":     nullString(a.State),
		"district":  nullString(a.District),
		"city":      nullString(a.City),
		"address1":  nullString(a.Address1),
		"landmark":  nullString(a.Landmark),
	}
}

func cartItemFromRecord(r store.Record) *model.CartItem {
	return &model.CartItem{
		ID:        r.Int("id"),
		UserID:    r.String("user_id"),
		ProductID: r.String("product_id"),
		Quantity:  int(r.Int("quantity")),
		CreatedAt: r.Time("created_at"),
		UpdatedAt: r.Time("updated_at"),
	}
}

func orderFromRecord(r store.Record) *model.Order {
	o := &model.Order{
		ID:                   r.String("id"),
		UserID:               r.String("user_id"),
		Total:                r.Decimal("total"),
		PaymentMethod:        r.String("payment_method"),
		PaymentTransactionID: r.String("payment_transaction_id"),
		PaymentStatus:        r.String("payment_status"),
		Status:               model.OrderStatus(r.String("status")),
		CreatedAt:            r.Time("created_at"),
		UpdatedAt:            r.Time("updated_at"),
	}
	if !r.DecodeJSON("items", &o.Items) || o.Items == nil {
		o.Items = []model.OrderItem{}
	}
	var addr model.ShippingAddress
	if r.DecodeJSON("shipping_address", &addr) {
		o.ShippingAddress = &addr
	}
	return o
}

func orderValues(o *model.Order) store.Record {
	items := o.Items
	if items == nil {
		items = []model.OrderItem{}
	}
	values := store.Record{
		"id":                     o.ID,
		"user_id":                nullString(o.UserID),
		"items":                  jsonValue(items),
		"total":                  o.Total,
		"shipping_address":       nil,
		"payment_method":         nullString(o.PaymentMethod),
		"payment_transaction_id": nullString(o.PaymentTransactionID),
		"payment_status":         nullString(o.PaymentStatus),
		"status":                 string(o.Status),
	}
	if o.ShippingAddress != nil {
		values["shipping_address"] = jsonValue(o.ShippingAddress)
	}
	if o.Status == "" {
		values["status"] = string(model.OrderStatusPending)
	}
	if !o.CreatedAt.IsZero() {
		values["created_at"] = o.CreatedAt
	}
	return values
}

// nullString stores empty optional text as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func jsonValue(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
