package screens

// Specialization is one study program shown on the information hub.
type Specialization struct {
	Key   string
	Name  string
	Pages []string
}

var specializations = []Specialization{
	{
		Key:  "AIA",
		Name: "Automatica, Informatica Aplicata si Sisteme Inteligente",
		Pages: []string{
			"Automatica si Informatica Aplicata\n\nO specializare cu traditie de 30 de ani. Inveti sa dezvolti aplicatii tehnice si de timp real, sisteme de conducere automata si robotica, automate programabile, microcontrolere si sisteme embedded.",
			"Discipline\n\n- Limbaje de programare\n- Automate programabile\n- Sisteme de timp real\n- Interfete utilizator si grafica\n- Sisteme de conducere a robotilor\n- Inteligenta artificiala\n- Optimizari",
			"Ai acces la:\n\n- Laboratoare moderne de automatica si robotica\n- Stagii de practica in companii locale si nationale\n- Angajare in automatica si informatica aplicata\n\nDupa licenta: masterat in Sisteme Informatice de Conducere Avansata, apoi doctorat in Ingineria Sistemelor.",
			"De ce AIA?\n\nConstruiesti masini si sisteme care gandesc si actioneaza.\n\n- Proiecte: roboti, drone, sisteme embedded\n- Skilluri: programare embedded, control, viziune\n- Joburi: robotica, automatizari industriale, IoT",
		},
	},
	{
		Key:  "CTI",
		Name: "Calculatoare si Tehnologia Informatiei",
		Pages: []string{
			"Calculatoare si Tehnologia Informatiei\n\nFormare de inginer in informatica la standarde internationale, cu o traditie de peste 20 de ani. Inveti cum se construiesc aplicatii reale folosite de milioane de oameni.",
			"Dupa absolvire poti:\n\n- Dezvolta aplicatii web, mobile si desktop\n- Construi sisteme distribuite\n- Administra si securiza retele\n- Conduce proiecte IT\n- Lucra cu multimedia si grafica",
			"Toolkit-ul unui inginer modern\n\nLimbaje: Java, C++, C#, Python, PHP\nBaze de date: Oracle, MySQL\nSisteme de operare si retele: Linux, Windows\nDomenii noi: aplicatii mobile, inteligenta artificiala, robotica",
			"De ce CTI?\n\nConstruiesti aplicatii si servicii care ruleaza peste tot.\n\n- Proiecte: aplicatii web si mobile, servicii cloud\n- Skilluri: programare, baze de date, securitate\n- Joburi: dezvoltare software, DevOps, cloud",
		},
	},
	{
		Key:  "IE",
		Name: "Inginerie Electrica",
		Pages: []string{
			"Inginerie Electrica\n\nTrei specializari pentru viitorul energetic: Inginerie Electrica si Calculatoare, Electromecanica, Electronica de Putere si Actionari Electrice. Poti continua cu masterat si doctorat.",
			"Competente\n\n- Proiectarea instalatiilor electrice\n- Modelarea actionarilor electrice\n- Compatibilitate electromagnetica\n- Automatizarea proceselor electromecanice\n- Sisteme de achizitie de date",
			"Conditii si oportunitati\n\n- Laboratoare moderne si echipamente profesionale\n- Burse nationale si internationale\n- Stagii in companii energetice\n- Proiecte folosite in mediul real",
			"De ce IE?\n\nLucrezi cu puterea care alimenteaza orasul si industria.\n\n- Proiecte: motoare electrice, statii de incarcare\n- Skilluri: circuite, masuratori, sisteme de putere\n- Joburi: energie, proiectare, automatizari",
		},
	},
	{
		Key:  "IETTI",
		Name: "Inginerie Electronica, Telecomunicatii si Tehnologii Informationale",
		Pages: []string{
			"Inginerie Electronica, Telecomunicatii si Tehnologii Informationale\n\nInveti componente si dispozitive, semnale si circuite, circuite integrate, microprocesoare si microcontrolere folosite in industrie si medicina.",
			"Laboratoare si resurse\n\nSali dotate cu echipamente de ultima generatie, module de dezvoltare pentru exercitii practice, retele de calculatoare si software specializat.",
			"Cariere\n\nProiectarea si testarea echipamentelor electronice si a sistemelor de comunicatii. Poti continua cu masteratul in Sisteme Electronice Avansate sau te poti angaja in R&D, telecom, auto, IoT sau medical.",
			"De ce IETTI?\n\nProiectezi dispozitive electronice si sisteme de comunicatie.\n\n- Proiecte: placi electronice, module wireless, senzori\n- Skilluri: electronica, RF, prelucrarea semnalelor\n- Joburi: telecom, design hardware, IoT",
		},
	},
}

// Specializations returns the programs shown on the information hub.
func Specializations() []Specialization {
	return specializations
}

func lookupSpecialization(key string) (Specialization, bool) {
	for _, s := range specializations {
		if s.Key == key {
			return s, true
		}
	}
	return Specialization{}, false
}
