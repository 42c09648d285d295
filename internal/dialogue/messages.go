package dialogue

import (
	"fmt"
	"time"

	"github.com/minicelia/celia/internal/types"
)

const welcomeMessage = `Mini‑CELIA · Genera y valida JN, PPT, CEC y CR con enfoque de cumplimiento.
• Usa las "Acciones rápidas" o pide "Generar JN/PPT/CEC/CR".
• "Ver cumplimiento" revisa DNSH/PRTR, RGPD y no fraccionamiento.
• "Validar coherencia" comprueba lotes, pesos (=100%) y plazos.`

const clarifyingPrompt = "¿Quieres que orqueste el flujo completo ahora (JN → PPT → CEC → CR) o generamos una sección concreta?"

// genericSuccess is emitted when no narrative can be extracted from an
// otherwise successful generation response.
const genericSuccess = "Justificación de la Necesidad generada correctamente. Los datos estructurados han sido procesados por el sistema."

// renderGenerated wraps extracted narrative in the display block shown in
// the chat and stored as section content.
func renderGenerated(narrative string) string {
	now := time.Now().Format("02/01/2006 15:04")
	return fmt.Sprintf(
		`<div class="generated-content">%s<br><br><small><strong>Generado:</strong> %s - Contenido creado con IA</small></div>`,
		narrative, now)
}

// offlineJN is the locally rendered fallback for the guided flow when the
// generation service is unreachable.
func offlineJN(expedienteID string, ctx types.Context) string {
	proceso := ctx.Proceso
	if proceso == "" {
		proceso = "servicios especializados"
	}
	entidad := ctx.Entidad
	if entidad == "" {
		entidad = "No especificada"
	}
	return fmt.Sprintf(`<div class="generated-content"><strong>Justificación de la Necesidad (JN)</strong><br><br>`+
		`<strong>Expediente:</strong> %s<br><strong>Entidad:</strong> %s<br><br>`+
		`<strong>1. Necesidad identificada</strong><br>`+
		`Se ha identificado la necesidad de contratar <em>%s</em> para garantizar la continuidad del servicio público y el cumplimiento de los objetivos institucionales.<br><br>`+
		`<strong>2. Justificación normativa</strong><br>`+
		`La contratación se ajusta a lo dispuesto en la Ley de Contratos del Sector Público, garantizando los principios de transparencia, concurrencia e igualdad de trato, sin fraccionamiento del objeto contractual.<br><br>`+
		`<strong>3. Procedimiento propuesto</strong><br>`+
		`Se propone procedimiento abierto con criterios de adjudicación equilibrados que permitan seleccionar la oferta más ventajosa.<br><br>`+
		`<small><strong>Modo offline:</strong> contenido generado localmente. Conecta con el servicio de generación para obtener redacción completa.</small></div>`,
		expedienteID, entidad, proceso)
}

// offlineSection renders per-section fallback content for quick actions.
func offlineSection(id types.SectionID, ctx types.Context) string {
	proceso := ctx.Proceso
	if proceso == "" {
		proceso = "el proceso"
	}
	switch id {
	case types.SectionJN:
		return offlineJN("SIN_ID", ctx)
	case types.SectionPPT:
		return fmt.Sprintf(`<strong>Pliego de Prescripciones Técnicas</strong><br>`+
			`Objeto y alcance del contrato para %s. Tratamiento de datos conforme a RGPD; `+
			`criterios alineados con DNSH/PRTR.<br><em>Modo offline.</em>`, proceso)
	case types.SectionCEC:
		return fmt.Sprintf(`<strong>Cuadro Económico de Costes</strong><br>`+
			`Presupuesto estimativo para %s. Distribución de pesos: Total: 100%%.<br><em>Modo offline.</em>`, proceso)
	case types.SectionCR:
		return fmt.Sprintf(`<strong>Cuadro Resumen</strong><br>`+
			`Resumen ejecutivo del expediente para %s. Ponderación de criterios: Total: 100%%.<br><em>Modo offline.</em>`, proceso)
	}
	return ""
}
