// Package docs Lawn Quote Service API.
//
// Сервис оценки площади газона и расчёта квот на стрижку.
// По viewport адреса оценивает площадь газона, строит полигоны двора,
// ведёт сессии ручного рисования зон и считает цену по шкале аккаунта.
//
// Основные возможности:
// - Автоматическая оценка площади газона по адресу
// - Ручное рисование и редактирование зон на карте
// - Маржинальная шкала цен и плоская ставка за кв. фут
// - Сохранение квот, воронка продаж и учёт использования по тарифу
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
