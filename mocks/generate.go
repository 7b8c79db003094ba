package mocks

//go:generate mockgen -destination=./mock_account_repository.go -package=mocks cryptosim/internal/domain AccountRepository
//go:generate mockgen -destination=./mock_quote_provider.go -package=mocks cryptosim/internal/domain QuoteProvider
//go:generate mockgen -destination=./mock_db.go -package=mocks cryptosim/internal/repository DB
