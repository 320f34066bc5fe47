package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Auth ---

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name,omitempty"`
}

// --- Profile ---

type UpdateProfileRequest struct {
	Phone   string `json:"phone_number"`
	Address string `json:"address"`
}

type ProfileResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone_number"`
	Address string    `json:"address"`
}

// --- Product ---

type CreateProductRequest struct {
	Name    string `json:"name" binding:"required"`
	Code    string `json:"code" binding:"required"`
	Price   int64  `json:"price" binding:"min=0"`
	Digital bool   `json:"digital"`
	Image   string `json:"image"`
}

type UpdateProductRequest struct {
	Name    *string `json:"name"`
	Code    *string `json:"code"`
	Price   *int64  `json:"price" binding:"omitempty,min=0"`
	Digital *bool   `json:"digital"`
	Image   *string `json:"image"`
}

type ListProductsRequest struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Search string `form:"search"`
}

type ProductResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Price     int64     `json:"price"`
	Digital   bool      `json:"digital"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// --- Article ---

type CreateArticleRequest struct {
	Name    string     `json:"name" binding:"required"`
	Content string     `json:"content" binding:"required"`
	Image   string     `json:"image"`
	DateUp  *time.Time `json:"date_up"`
}

type ListArticlesRequest struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

type ArticleResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Image   string    `json:"image"`
	Content string    `json:"content"`
	DateUp  time.Time `json:"date_up"`
}

type ArticleListResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// --- Cart ---

type UpdateCartItemRequest struct {
	ProductID string `json:"productId"`
	Action    string `json:"action"`
}

type CartResponse struct {
	OrderID   *uuid.UUID         `json:"order_id"`
	Items     []CartItemResponse `json:"items"`
	CartItems int                `json:"cart_items"`
	CartTotal int64              `json:"cart_total"`
	ReadOnly  bool               `json:"read_only"`
}

type CartItemResponse struct {
	ID        int64     `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Image     string    `json:"image"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	LineTotal int64     `json:"line_total"`
}

type ApplyDiscountRequest struct {
	Code string `json:"code"`
}

type ApplyDiscountResponse struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
	Subtotal int64  `json:"subtotal"`
	Discount int64  `json:"discount"`
	Total    int64  `json:"total"`
}

// --- Checkout ---

type DeliveryFields struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Mobile  string `json:"mobile"`
}

type CheckoutResponse struct {
	Cart           CartResponse   `json:"cart"`
	Subtotal       int64          `json:"subtotal"`
	DiscountCode   string         `json:"discount_code"`
	DiscountAmount int64          `json:"discount_amount"`
	FinalTotal     int64          `json:"final_total"`
	Delivery       DeliveryFields `json:"delivery"`
}

type CompleteCheckoutResponse struct {
	OrderID  uuid.UUID `json:"order_id"`
	Redirect string    `json:"redirect"`
}

type ConfirmationResponse struct {
	Order          OrderResponse `json:"order"`
	Subtotal       int64         `json:"subtotal"`
	DiscountCode   string        `json:"discount_code"`
	DiscountAmount int64         `json:"discount_amount"`
	FinalTotal     int64         `json:"final_total"`
}

// --- Order ---

type OrderResponse struct {
	ID          uuid.UUID          `json:"id"`
	Complete    bool               `json:"complete"`
	Items       []CartItemResponse `json:"items"`
	CartItems   int                `json:"cart_items"`
	CartTotal   int64              `json:"cart_total"`
	Delivery    *DeliveryFields    `json:"delivery,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}
