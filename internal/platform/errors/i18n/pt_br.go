package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		// User errors
		CodeUserDisplayNameEmpty: "O nome de exibição não pode ficar vazio",
		CodeUserInvalidRole:      "Papel de usuário inválido",

		// Session validation errors
		CodeSessionTitleEmpty:        "O título da sessão não pode ficar vazio",
		CodeSessionScheduleInvalid:   "O horário de término deve ser depois do início",
		CodeSessionStartInPast:       "O horário de início deve estar no futuro",
		CodeSessionCapacityInvalid:   "A capacidade da sessão deve ser de pelo menos 1",
		CodeSessionPublishIncomplete: "A sessão está sem {{.Field}} e não pode ser publicada",

		// Session lifecycle errors
		CodeSessionStatusDisallowsOp:       "O status {{.Status}} não permite {{.Operation}}",
		CodeSessionInvalidStatusTransition: "Não é possível mudar a sessão de {{.FromStatus}} para {{.ToStatus}}",
		CodeSessionAlreadyJoined:           "Você já entrou nesta sessão",
		CodeSessionFull:                    "A sessão está lotada",

		// Caller errors
		CodeCallerUnauthenticated: "Entre para continuar",
		CodeCallerNotHost:         "Apenas anfitriões podem executar esta ação",
		CodeCallerNotOwner:        "Apenas o anfitrião da sessão pode executar esta ação",
		CodeTokenInvalid:          "Token de acesso inválido",
		CodeTokenExpired:          "Token de acesso expirado",

		// Request and query errors
		CodeRequestMalformed:   "O corpo da requisição está malformado",
		CodeQueryInvalidFilter: "Expressão de filtro inválida",
		CodeQueryInvalidOrder:  "O campo de ordenação {{.Field}} não é suportado",
		CodeQueryInvalidLimit:  "O limite de página deve ser um número positivo",

		// Storage errors
		CodeNotFound: "O registro solicitado não foi encontrado",
	},
}
