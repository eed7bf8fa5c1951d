package contextkeys

type contextKey string

const (
	ShopIDKey contextKey = "ShopID"
	BotKey    contextKey = "Bot"
)
