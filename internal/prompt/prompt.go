// Package prompt holds the extraction prompt sent with every page.
package prompt

import (
	"fmt"
	"os"
	"strings"
)

// Default asks for every field of an OGAR motor insurance certificate,
// laid out as company, policy, vehicle, subscriber, insured, the eighteen
// coverage lines (value, deductible, premium), tariff, capital sums and
// premium breakdown.
const Default = `Extrais TOUS les champs de ce document d'assurance OGAR en français.
Retourne un objet JSON détaillé avec la structure suivante:

{
  "informations_compagnie": {
    "nom_compagnie": "",
    "telephone": "",
    "fax": "",
    "bp": "",
    "email": "",
    "courtier": ""
  },
  "informations_police": {
    "police_numero": "",
    "quittance_numero": "",
    "emission_date": "",
    "effet_du": "",
    "effet_heure": "",
    "echeance_au": "",
    "echeance_heure": "",
    "compagnie": "",
    "affaire": ""
  },
  "designation_vehicule": {
    "marque": "",
    "genre": "",
    "type": "",
    "carrosserie": "",
    "energie": "",
    "puissance": "",
    "nombre_places": "",
    "valeur_neuve": "",
    "valeur_venale": "",
    "mise_circulation": "",
    "immatriculation": "",
    "chassis": "",
    "usage": ""
  },
  "souscripteur": {
    "nom": "",
    "numero_client": "",
    "bp": "",
    "ville": "",
    "pays": "",
    "telephone": "",
    "fax": ""
  },
  "assure": {
    "nom": "",
    "bp": "",
    "ville": "",
    "pays": "",
    "telephone": "",
    "fax": ""
  },
  "garanties": {
    "risque_a_responsabilite_civile": {"valeur": "", "franchise": "", "prime": ""},
    "risque_b_recours_tiers_incendie": {"valeur": "", "franchise": "", "prime": ""},
    "risque_c_defense_recours": {"valeur": "", "franchise": "", "prime": ""},
    "risque_d_avance_recours": {"valeur": "", "franchise": "", "prime": ""},
    "risque_e_incendie": {"valeur": "", "franchise": "", "prime": ""},
    "risque_f_vol": {"valeur": "", "franchise": "", "prime": ""},
    "risque_g_vol_agression": {"valeur": "", "franchise": "", "prime": ""},
    "risque_h_bris_glace": {"valeur": "", "franchise": "", "prime": ""},
    "risque_i_perte_totale": {"valeur": "", "franchise": "", "prime": ""},
    "risque_j_tierce_collision": {"valeur": "", "franchise": "", "prime": ""},
    "risque_k_dommages": {"valeur": "", "franchise": "", "prime": ""},
    "risque_l_nombre_passagers": {"valeur": "", "franchise": "", "prime": ""},
    "risque_m_pt_camion": {"valeur": "", "franchise": "", "prime": ""},
    "risque_n_pt_eleves": {"valeur": "", "franchise": "", "prime": ""},
    "risque_o_passagers_clandestins": {"valeur": "", "franchise": "", "prime": ""},
    "risque_p_remorque": {"valeur": "", "franchise": "", "prime": ""},
    "risque_q_individuelle_passagers": {"valeur": "", "franchise": "", "prime": ""},
    "risque_r_assistance": {"valeur": "", "franchise": "", "prime": ""}
  },
  "tarif": {
    "bonus": "",
    "taux_pourcent": "",
    "montant": "",
    "stat_auto": "",
    "stat_ip": ""
  },
  "capitaux_individuelle_passager": {
    "deces": "",
    "ipp": "",
    "frais_medicaux": ""
  },
  "primes_detail": {
    "prime_nette_brute": "",
    "reductions": "",
    "prime_nette_reduite_deduites": "",
    "accessoires": "",
    "taxes": "",
    "cemac": "",
    "css": "",
    "tsvl": "",
    "cca": "",
    "prime_totale": ""
  }
}

Extrais chaque champ visible dans le document. Si un champ est vide ou non visible, utilise une chaîne vide "".
Sois précis et exhaustif. N'oublie aucun champ.`

// Resolve returns custom when it is not blank, otherwise Default.
func Resolve(custom string) string {
	if strings.TrimSpace(custom) == "" {
		return Default
	}
	return custom
}

// Load reads a prompt from path. An empty path yields Default.
func Load(path string) (string, error) {
	if path == "" {
		return Default, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading prompt file: %w", err)
	}
	return Resolve(string(data)), nil
}
