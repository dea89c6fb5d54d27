package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Products() ProductRepository
	BulkOrders() BulkOrderRepository
	Orders() OrderRepository
}
