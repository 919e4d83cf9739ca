// Package docs holds one OpenAPI document per service, each registered with
// swag under the service name. The gateway document covers every service
// behind it. Regenerate with go generate after changing handler annotations.
package docs

//go:generate swag init -g main.go -d ../../cmd/finance,../finance --parseInternal --instanceName finance -o . --outputTypes go
//go:generate swag init -g main.go -d ../../cmd/goals,../goals --parseInternal --instanceName goals -o . --outputTypes go
//go:generate swag init -g main.go -d ../../cmd/accounts,../accounts --parseInternal --instanceName accounts -o . --outputTypes go
//go:generate swag init -g main.go -d ../../cmd/insight,../insight --parseInternal --instanceName insight -o . --outputTypes go
//go:generate swag init -g main.go -d ../../cmd/gateway,../gateway,../finance,../goals,../accounts,../insight --parseInternal --instanceName gateway -o . --outputTypes go

// Instance names, as passed to the swagger UI handlers.
const (
	Finance  = "finance"
	Goals    = "goals"
	Accounts = "accounts"
	Insight  = "insight"
	Gateway  = "gateway"
)
