package dto

// Estados del envelope de respuesta.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope cuerpo de toda respuesta exitosa: {status, results?, data}.
type Envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success envelope con data.
func Success(data any) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

// List envelope de listados: data.data con results = len(docs).
func List[T any](items []T) Envelope {
	n := len(items)
	return Envelope{Status: StatusSuccess, Results: &n, Data: Data{Data: items}}
}

// Data contenedor {data: ...} usado por las rutas CRUD.
type Data struct {
	Data any `json:"data"`
}

// ErrorResponse cuerpo de error HTTP. Error y Stack solo se llenan en development.
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   any    `json:"error,omitempty"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}
