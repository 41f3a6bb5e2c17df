package middleware

import (
	"net/http"

	"github.com/m04kA/SMC-ParkingService/internal/api/handlers"
)

const (
	operatorRoleHeader = "X-Operator-Role"
	operatorRoleStaff  = "staff"
)

const msgOperatorOnly = "доступно только операторам парковки"

// Operator пропускает только запросы сотрудников: заголовок X-Operator-Role
// должен содержать роль staff. Роль проставляет шлюз после аутентификации,
// сервис ей доверяет так же, как X-User-ID
// Используется после Auth, поэтому ID оператора уже лежит в контексте
func Operator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(operatorRoleHeader) != operatorRoleStaff {
			handlers.RespondForbidden(w, msgOperatorOnly)
			return
		}

		next.ServeHTTP(w, r)
	})
}
