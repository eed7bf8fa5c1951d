package dto

type LoginDTO struct {
	ShopID   uint64 `json:"shop_id" validate:"required,gt=0"`
	Password string `json:"password" validate:"required,min=4"`
}

type AuthResponseDTO struct {
	AccessToken string `json:"access_token"`
	ShopID      uint64 `json:"shop_id"`
	ShopName    string `json:"shop_name"`
	ExpiresAt   int64  `json:"expires_at"`
}
