package repository

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Inventory  InventoryRepository
	Movements  StockMovementRepository
	Products   ProductRepository
	Warehouses WarehouseRepository
}
