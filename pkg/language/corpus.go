package language

// detectionCorpus holds a small fixed set of phrases per language. The
// detector embeds them once at startup and classifies queries by cosine
// nearest neighbors against this set.
var detectionCorpus = map[Language][]string{
	English: {
		"hello i want to apply for a loan",
		"please upload the aadhaar card documents",
		"enter the mobile number to receive an otp",
		"what is the status of my application",
		"take a selfie photo for verification",
		"submit the loan application form",
		"show me the welcome screen",
		"verify the one time password",
	},
	Hindi: {
		"नमस्ते मुझे लोन के लिए आवेदन करना है",
		"कृपया आधार कार्ड के दस्तावेज़ अपलोड करें",
		"मोबाइल नंबर दर्ज करें",
		"मेरे आवेदन की स्थिति क्या है",
		"सत्यापन के लिए सेल्फी लें",
		"लोन आवेदन फॉर्म जमा करें",
		"ओटीपी सत्यापित करें",
		"मुझे स्वागत स्क्रीन दिखाएं",
	},
	Kannada: {
		"ನಮಸ್ಕಾರ ನಾನು ಸಾಲಕ್ಕೆ ಅರ್ಜಿ ಸಲ್ಲಿಸಲು ಬಯಸುತ್ತೇನೆ",
		"ದಯವಿಟ್ಟು ಆಧಾರ್ ಕಾರ್ಡ್ ದಾಖಲೆಗಳನ್ನು ಅಪ್ಲೋಡ್ ಮಾಡಿ",
		"ಮೊಬೈಲ್ ಸಂಖ್ಯೆಯನ್ನು ನಮೂದಿಸಿ",
		"ನನ್ನ ಅರ್ಜಿಯ ಸ್ಥಿತಿ ಏನು",
		"ಪರಿಶೀಲನೆಗಾಗಿ ಸೆಲ್ಫಿ ತೆಗೆದುಕೊಳ್ಳಿ",
		"ಸಾಲದ ಅರ್ಜಿ ನಮೂನೆಯನ್ನು ಸಲ್ಲಿಸಿ",
		"ಒಟಿಪಿ ಪರಿಶೀಲಿಸಿ",
		"ಸ್ವಾಗತ ಪರದೆಯನ್ನು ತೋರಿಸಿ",
	},
	Marathi: {
		"नमस्कार मला कर्जासाठी अर्ज करायचा आहे",
		"कृपया आधार कार्डची कागदपत्रे अपलोड करा",
		"मोबाइल क्रमांक प्रविष्ट करा",
		"माझ्या अर्जाची स्थिती काय आहे",
		"पडताळणीसाठी सेल्फी घ्या",
		"कर्ज अर्ज सबमिट करा",
		"ओटीपी पडताळा",
		"मला स्वागत स्क्रीन दाखवा",
	},
	Tamil: {
		"வணக்கம் நான் கடனுக்கு விண்ணப்பிக்க விரும்புகிறேன்",
		"ஆதார் அட்டை ஆவணங்களை பதிவேற்றவும்",
		"மொபைல் எண்ணை உள்ளிடவும்",
		"என் விண்ணப்பத்தின் நிலை என்ன",
		"சரிபார்ப்புக்கு செல்ஃபி எடுக்கவும்",
		"கடன் விண்ணப்பத்தை சமர்ப்பிக்கவும்",
		"ஒடிபி சரிபார்க்கவும்",
		"வரவேற்பு திரையை காட்டு",
	},
}
