// Package repoargs содержит структуры-аргументы и имена репозиториев. Вынесены в отдельный
// пакет чтобы не плодить циклические импорты между сервисами и репозиториями.
package repoargs

type RepositoryName string

const (
	UserRepoName        RepositoryName = "user"
	PlanRepoName        RepositoryName = "plan"
	InvestmentRepoName  RepositoryName = "investment"
	TransactionRepoName RepositoryName = "transaction"
)
