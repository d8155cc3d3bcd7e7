package domain

// OwnerEntity is implemented by every entity that has a single owning principal
type OwnerEntity interface {
	OwnerID() uint
}

var (
	_ OwnerEntity = Wallet{}
	_ OwnerEntity = Category{}
	_ OwnerEntity = Transaction{}
	_ OwnerEntity = Group{}
)
