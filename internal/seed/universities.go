package seed

// KenyanUniversities is the default set of pre-verified universities.
var KenyanUniversities = []University{
	{Name: "University of Nairobi", Location: "Nairobi", Domain: "uonbi.ac.ke"},
	{Name: "Kenyatta University", Location: "Nairobi", Domain: "ku.ac.ke"},
	{Name: "Jomo Kenyatta University of Agriculture and Technology", Location: "Juja", Domain: "jkuat.ac.ke"},
	{Name: "Moi University", Location: "Eldoret", Domain: "mu.ac.ke"},
	{Name: "Egerton University", Location: "Njoro", Domain: "egerton.ac.ke"},
	{Name: "Maseno University", Location: "Maseno", Domain: "maseno.ac.ke"},
	{Name: "Technical University of Kenya", Location: "Nairobi", Domain: "tukenya.ac.ke"},
	{Name: "Technical University of Mombasa", Location: "Mombasa", Domain: "tum.ac.ke"},
	{Name: "Masinde Muliro University of Science and Technology", Location: "Kakamega", Domain: "mmust.ac.ke"},
	{Name: "Dedan Kimathi University of Technology", Location: "Nyeri", Domain: "dkut.ac.ke"},
	{Name: "Chuka University", Location: "Chuka", Domain: "chuka.ac.ke"},
	{Name: "Kisii University", Location: "Kisii", Domain: "kisiiuniversity.ac.ke"},
	{Name: "University of Eldoret", Location: "Eldoret", Domain: "uoeld.ac.ke"},
	{Name: "Karatina University", Location: "Karatina", Domain: "karu.ac.ke"},
	{Name: "Meru University of Science and Technology", Location: "Meru", Domain: "must.ac.ke"},
	{Name: "Multimedia University of Kenya", Location: "Nairobi", Domain: "mmu.ac.ke"},
	{Name: "South Eastern Kenya University", Location: "Kitui", Domain: "seku.ac.ke"},
	{Name: "University of Kabianga", Location: "Kericho", Domain: "kabianga.ac.ke"},
	{Name: "Laikipia University", Location: "Nyahururu", Domain: "laikipia.ac.ke"},
	{Name: "Machakos University", Location: "Machakos", Domain: "mksu.ac.ke"},
	{Name: "Kibabii University", Location: "Bungoma", Domain: "kibu.ac.ke"},
	{Name: "Maasai Mara University", Location: "Narok", Domain: "mmarau.ac.ke"},
	{Name: "Jaramogi Oginga Odinga University of Science and Technology", Location: "Bondo", Domain: "jooust.ac.ke"},
	{Name: "Pwani University", Location: "Kilifi", Domain: "pu.ac.ke"},
	{Name: "Taita Taveta University", Location: "Voi", Domain: "ttu.ac.ke"},
	{Name: "KCA University", Location: "Nairobi", Domain: "kcau.ac.ke"},
	{Name: "Africa Nazarene University", Location: "Nairobi", Domain: "anu.ac.ke"},
	{Name: "Daystar University", Location: "Nairobi", Domain: "daystar.ac.ke"},
	{Name: "United States International University Africa", Location: "Nairobi", Domain: "usiu.ac.ke"},
	{Name: "Strathmore University", Location: "Nairobi", Domain: "strathmore.edu"},
	{Name: "Catholic University of Eastern Africa", Location: "Nairobi", Domain: "cuea.edu"},
	{Name: "Mount Kenya University", Location: "Thika", Domain: "mku.ac.ke"},
	{Name: "Kenya Methodist University", Location: "Meru", Domain: "kemu.ac.ke"},
	{Name: "Pan Africa Christian University", Location: "Nairobi", Domain: "pacu.ac.ke"},
	{Name: "St. Paul's University", Location: "Limuru", Domain: "spu.ac.ke"},
	{Name: "Africa International University", Location: "Nairobi", Domain: "aiu.ac.ke"},
	{Name: "KAG East University", Location: "Nairobi", Domain: "east.ac.ke"},
	{Name: "Great Lakes University of Kisumu", Location: "Kisumu", Domain: "gluk.ac.ke"},
	{Name: "Adventist University of Africa", Location: "Nairobi", Domain: "aua.ac.ke"},
	{Name: "Gretsa University", Location: "Thika", Domain: "gretsauniversity.ac.ke"},
	{Name: "Pioneer International University", Location: "Nairobi", Domain: "piu.ac.ke"},
	{Name: "Umma University", Location: "Kajiado", Domain: "umma.ac.ke"},
	{Name: "Kirinyaga University", Location: "Kerugoya", Domain: "kyu.ac.ke"},
	{Name: "Murang'a University of Technology", Location: "Murang'a", Domain: "mut.ac.ke"},
	{Name: "Rongo University", Location: "Rongo", Domain: "rongovarsity.ac.ke"},
	{Name: "Co-operative University of Kenya", Location: "Nairobi", Domain: "cuk.ac.ke"},
	{Name: "Garissa University", Location: "Garissa", Domain: "gau.ac.ke"},
	{Name: "Alupe University", Location: "Busia", Domain: "auc.ac.ke"},
	{Name: "Tom Mboya University", Location: "Homa Bay", Domain: "tmu.ac.ke"},
	{Name: "Tharaka University", Location: "Tharaka Nithi", Domain: "tharaka.ac.ke"},
	{Name: "Lukenya University", Location: "Machakos", Domain: "lukenyauniversity.ac.ke"},
	{Name: "University of Embu", Location: "Embu", Domain: "embuni.ac.ke"},
	{Name: "National Defence University", Location: "Nakuru", Domain: "ndu.ac.ke"},
	{Name: "Open University of Kenya", Location: "Konza Technopolis", Domain: "ouk.ac.ke"},
	{Name: "Kaimosi Friends University", Location: "Vihiga", Domain: "kafu.ac.ke"},
	{Name: "University of Eastern Africa, Baraton", Location: "Eldoret", Domain: "ueab.ac.ke"},
	{Name: "Scott Christian University", Location: "Machakos", Domain: "scott.ac.ke"},
	{Name: "Kabarak University", Location: "Nakuru", Domain: "kabarak.ac.ke"},
	{Name: "Zetech University", Location: "Nairobi", Domain: "zetech.ac.ke"},
	{Name: "Kenya Highlands University", Location: "Kericho", Domain: "khu.ac.ke"},
	{Name: "Presbyterian University of East Africa", Location: "Kikuyu", Domain: "puea.ac.ke"},
	{Name: "Management University of Africa", Location: "Nairobi", Domain: "mua.ac.ke"},
	{Name: "Amref International University", Location: "Nairobi", Domain: "amiu.ac.ke"},
	{Name: "Riara University", Location: "Nairobi", Domain: "riarauniversity.ac.ke"},
	{Name: "International Leadership University", Location: "Nairobi", Domain: "ilu.ac.ke"},
}
