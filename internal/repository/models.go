package repository

// Models lists the tables owned by this package, in migration order.
func Models() []any {
	return []any{&userModel{}, &roomModel{}, &bookingModel{}}
}
